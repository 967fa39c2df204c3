// Package cookie implements the Cookie data model from spec.md §3,
// HMAC-signed cookie values, and request Cookie-header parsing, adapted
// from the teacher's net/http cookie jar into the simpler shape Spider
// needs (no cookie jar / client-side persistence, a non-goal here).
package cookie

import (
	"fmt"
	"strings"
	"time"
)

// SameSite mirrors the three values spec.md §3 names.
type SameSite int

const (
	SameSiteDefault SameSite = iota
	SameSiteLax
	SameSiteStrict
	SameSiteNone
)

// TimeFormat is the wire format for the Expires attribute (RFC 1123,
// as the teacher's net/http fork defines it).
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Cookie is the {name, value, path, domain, max-age, expires, secure,
// http-only, same-site} tuple from spec.md §3.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	MaxAge   int
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
	SameSite SameSite
}

// New validates the SameSite=None+Secure invariant at construction
// time (spec.md §9: "enforce at Cookie construction, fail-closed") and
// returns an error rather than emitting a cookie no browser will honor.
func New(name, value string) (*Cookie, error) {
	c := &Cookie{Name: name, Value: value, Path: "/"}
	return c, c.validate()
}

func (c *Cookie) validate() error {
	if c.Name == "" || !isToken(c.Name) {
		return fmt.Errorf("cookie: invalid name %q", c.Name)
	}
	if c.SameSite == SameSiteNone && !c.Secure {
		return fmt.Errorf("cookie: SameSite=None requires Secure")
	}
	return nil
}

// WithSameSite sets SameSite, re-validating the None+Secure invariant.
func (c *Cookie) WithSameSite(s SameSite) (*Cookie, error) {
	c.SameSite = s
	return c, c.validate()
}

// String renders the cookie in Set-Cookie wire format.
func (c *Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(TimeFormat))
	}
	if c.MaxAge != 0 {
		fmt.Fprintf(&b, "; Max-Age=%d", c.MaxAge)
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	switch c.SameSite {
	case SameSiteLax:
		b.WriteString("; SameSite=Lax")
	case SameSiteStrict:
		b.WriteString("; SameSite=Strict")
	case SameSiteNone:
		b.WriteString("; SameSite=None")
	}
	return b.String()
}

// Delete returns a cookie that instructs the client to remove name.
func Delete(name string) *Cookie {
	return &Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, Expires: time.Unix(0, 0)}
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c == 0x7f || strings.ContainsRune("()<>@,;:\\\"/[]?={}", rune(c)) {
			return false
		}
	}
	return true
}

// Parse splits a request "Cookie: a=1; b=2" header value into a name ->
// value map, per spec.md §6's request cookie wire format.
func Parse(header string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(header, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		out[pair[:eq]] = pair[eq+1:]
	}
	return out
}
