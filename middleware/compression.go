package middleware

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

// CompressionConfig controls the gzip compression middleware.
type CompressionConfig struct {
	// MinSize is the smallest eager body length eligible for compression.
	MinSize int
}

var alreadyCompressedTypes = map[string]bool{
	"image/": true, "video/": true, "audio/": true,
	"application/zip": true, "application/gzip": true,
}

// Compression gzip-encodes eager response bodies when the client
// advertises support and the body is large enough to be worth it, per
// spec.md §4.8. Streaming responses are left untouched — their length
// isn't known up front to decide eligibility against MinSize.
func Compression(cfg CompressionConfig) Middleware {
	return Middleware{
		Pre: func(req *spider.Request) (Result, error) { return Continue(req), nil },
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			if resp == nil || resp.Stream != nil {
				return resp
			}
			if !strings.Contains(req.Header.Get(hdr.AcceptEncoding), "gzip") {
				return resp
			}
			if len(resp.Body) < cfg.MinSize {
				return resp
			}
			ct := resp.Header.Get(hdr.ContentType)
			for prefix := range alreadyCompressedTypes {
				if strings.HasPrefix(ct, prefix) {
					return resp
				}
			}
			if resp.Header.Get(hdr.ContentEncoding) != "" {
				return resp
			}
			var buf bytes.Buffer
			gw := gzip.NewWriter(&buf)
			if _, err := gw.Write(resp.Body); err != nil {
				return resp
			}
			if err := gw.Close(); err != nil {
				return resp
			}
			resp.Body = buf.Bytes()
			resp.Header.Set(hdr.ContentEncoding, "gzip")
			resp.Header.Set(hdr.ContentLength, strconv.Itoa(len(resp.Body)))
			return resp
		},
	}
}
