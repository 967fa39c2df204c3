package spider

import "time"

// Config is the flat configuration surface from spec.md §6. Three
// presets are provided; all fields may be overridden individually.
type Config struct {
	Port int

	MaxRequestLineLength int
	MaxHeaderCount       int
	MaxHeaderSize        int
	MaxTotalHeadersSize  int
	MaxRequestBodySize   int64

	SocketTimeout  time.Duration
	RequestTimeout time.Duration

	EnableChunkedEncoding bool
	EnableKeepAlive       bool
	MaxKeepAliveRequests  int

	// UploadTempDir is loaded with the rest of Config but is not read by
	// the server; streaming multipart parsing takes its spool directory
	// from body.Limits.UploadTempDir (os.TempDir() when empty).
	UploadTempDir string
}

// Default matches the documented defaults in spec.md §6.
func Default() Config {
	return Config{
		Port:                  8080,
		MaxRequestLineLength:  8192,
		MaxHeaderCount:        100,
		MaxHeaderSize:         8192,
		MaxTotalHeadersSize:   65536,
		MaxRequestBodySize:    10 << 20,
		SocketTimeout:         30 * time.Second,
		RequestTimeout:        60 * time.Second,
		EnableChunkedEncoding: true,
		EnableKeepAlive:       true,
		MaxKeepAliveRequests:  100,
	}
}

// Development loosens every limit, for local iteration against large
// payloads and slow clients (e.g. a debugger attached to the handler).
func Development() Config {
	c := Default()
	c.MaxRequestLineLength = 64 << 10
	c.MaxHeaderCount = 1000
	c.MaxHeaderSize = 64 << 10
	c.MaxTotalHeadersSize = 1 << 20
	c.MaxRequestBodySize = 100 << 20
	c.SocketTimeout = 5 * time.Minute
	c.RequestTimeout = 5 * time.Minute
	c.MaxKeepAliveRequests = 10000
	return c
}

// Strict tightens every limit for public-facing, hostile-traffic
// deployments.
func Strict() Config {
	c := Default()
	c.MaxRequestLineLength = 2048
	c.MaxHeaderCount = 40
	c.MaxHeaderSize = 4096
	c.MaxTotalHeadersSize = 16384
	c.MaxRequestBodySize = 1 << 20
	c.SocketTimeout = 5 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.MaxKeepAliveRequests = 10
	return c
}
