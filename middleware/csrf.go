package middleware

import (
	"crypto/subtle"
	"path"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/cookie"
	"github.com/alterationx10/spider/hdr"
)

// CSRFConfig controls the double-submit-cookie CSRF middleware.
type CSRFConfig struct {
	CookieName string // default "XSRF-TOKEN"
	HeaderName string // default "X-XSRF-TOKEN"
	Secret     []byte
	// ExemptGlobs are path.Match-style globs exempt from the check.
	ExemptGlobs []string
}

var safeMethods = map[string]bool{"GET": true, "HEAD": true, "OPTIONS": true}

// CSRF implements the double-submit cookie scheme from spec.md §4.8.
func CSRF(cfg CSRFConfig) Middleware {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "XSRF-TOKEN"
	}
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-XSRF-TOKEN"
	}

	return Middleware{
		Pre: func(req *spider.Request) (Result, error) {
			if safeMethods[req.Method] || isExempt(req.URI.RawPath, cfg.ExemptGlobs) {
				return Continue(req), nil
			}
			cookies := cookie.Parse(req.Header.Get(hdr.Cookie))
			cookieToken := cookies[cookieName]
			headerToken := req.Header.Get(headerName)
			if cookieToken == "" || headerToken == "" {
				return Respond(spider.FromError(spider.Forbidden("missing CSRF token"))), nil
			}
			if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
				return Respond(spider.FromError(spider.Forbidden("CSRF token mismatch"))), nil
			}
			return Continue(req), nil
		},
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			if resp == nil {
				return resp
			}
			cookies := cookie.Parse(req.Header.Get(hdr.Cookie))
			if cookies[cookieName] != "" {
				return resp
			}
			id, err := cookie.NewSessionID()
			if err != nil {
				return resp
			}
			c, err := cookie.New(cookieName, id)
			if err != nil {
				return resp
			}
			resp.Header.Add(hdr.SetCookie, c.String())
			return resp
		},
	}
}

func isExempt(p string, globs []string) bool {
	for _, g := range globs {
		if matched, _ := path.Match(g, p); matched {
			return true
		}
	}
	return false
}
