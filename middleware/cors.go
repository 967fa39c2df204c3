package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

// CORSConfig controls the CORS middleware, per spec.md §4.8.
type CORSConfig struct {
	// AllowedOrigins is empty for the permissive ("any origin") preset,
	// or an explicit allowlist for the restrictive preset.
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// PermissiveCORS allows any origin.
func PermissiveCORS() CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         10 * time.Minute,
	}
}

// RestrictiveCORS only allows the given origins.
func RestrictiveCORS(origins ...string) CORSConfig {
	c := PermissiveCORS()
	c.AllowedOrigins = origins
	return c
}

func (c CORSConfig) allows(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// CORS implements the preflight short-circuit and allow-origin
// attachment spec.md §4.8 describes.
func CORS(cfg CORSConfig) Middleware {
	return Middleware{
		Pre: func(req *spider.Request) (Result, error) {
			origin := req.Header.Get(hdr.Origin)
			if origin == "" || !cfg.allows(origin) {
				return Continue(req), nil
			}
			isPreflight := req.Method == "OPTIONS" &&
				req.Header.Get(hdr.AccessControlRequestMethod) != ""
			if isPreflight {
				resp := spider.Empty(spider.StatusNoContent)
				applyCORSHeaders(resp, cfg, origin)
				resp.Header.Set(hdr.AccessControlAllowMethods, strings.Join(cfg.AllowedMethods, ", "))
				resp.Header.Set(hdr.AccessControlAllowHeaders, strings.Join(cfg.AllowedHeaders, ", "))
				if cfg.MaxAge > 0 {
					resp.Header.Set(hdr.AccessControlMaxAge, strconv.Itoa(int(cfg.MaxAge.Seconds())))
				}
				return Respond(resp), nil
			}
			req.Attributes.Set("middleware.cors_origin", origin)
			return Continue(req), nil
		},
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			if origin := req.Attributes.GetString("middleware.cors_origin"); origin != "" && resp != nil {
				applyCORSHeaders(resp, cfg, origin)
			}
			return resp
		},
	}
}

func applyCORSHeaders(resp *spider.Response, cfg CORSConfig, origin string) {
	resp.Header.Set(hdr.AccessControlAllowOrigin, origin)
	if cfg.AllowCredentials {
		resp.Header.Set(hdr.AccessControlAllowCredentials, "true")
	}
}
