// Command spiderd wires the Spider stack into a runnable server
// binary: a Cobra CLI exposing serve, routes, and version subcommands,
// per SPEC_FULL.md §2/§4 (the docker-compose example in the retrieval
// pack wires cobra and yaml.v3 the same way for its own CLI).
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/handler"
	"github.com/alterationx10/spider/middleware"
	"github.com/alterationx10/spider/router"
)

// version is the release string printed by the version subcommand.
const version = "0.1.0"

type fileConfig struct {
	Port    int    `yaml:"port"`
	Preset  string `yaml:"preset"`
	LogJSON bool   `yaml:"log_json"`
}

func loadConfig(path string) (spider.Config, error) {
	switch path {
	case "":
		return spider.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return spider.Config{}, fmt.Errorf("spiderd: reading config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return spider.Config{}, fmt.Errorf("spiderd: parsing config: %w", err)
	}
	cfg := presetByName(fc.Preset)
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	return cfg, nil
}

func presetByName(name string) spider.Config {
	switch name {
	case "strict":
		return spider.Strict()
	case "development":
		return spider.Development()
	default:
		return spider.Default()
	}
}

func buildRouter() *router.Router {
	r := router.New()
	r.Get(router.Path(router.Lit("healthz")), handler.Bytes(
		func(_ *spider.Request, _ []byte) (*spider.Response, error) {
			return spider.Text(spider.StatusOK, "ok"), nil
		},
	))
	r.Get(router.Path(router.Lit("echo"), router.Str("text")), handler.Bytes(
		func(req *spider.Request, _ []byte) (*spider.Response, error) {
			text, _ := router.ParamString(req, "text")
			return spider.Text(spider.StatusOK, text), nil
		},
	))
	return r
}

func buildHandler(r *router.Router, log *logrus.Logger) spider.Handler {
	chain := middleware.New(
		middleware.Recover(log),
		middleware.RequestID(),
		middleware.Logging(log),
	)
	return chain.Wrap(r.Serve)
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "spiderd",
		Short: "Spider network runtime server",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a spider.yaml config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			log := logrus.New()
			r := buildRouter()
			srv := spider.NewServer(cfg, buildHandler(r, log), log)
			log.WithField("port", cfg.Port).Info("starting spiderd")
			return srv.ListenAndServe()
		},
	}

	routesCmd := &cobra.Command{
		Use:   "routes",
		Short: "List registered routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := buildRouter()
			for _, rt := range r.Routes() {
				fmt.Printf("%-6s %s\n", rt.Method, rt.Pattern)
			}
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the spiderd version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}

	root.AddCommand(serveCmd, routesCmd, versionCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
