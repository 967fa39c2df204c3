package spider

import "strings"

// URI is the immutable {scheme, authority, raw path, raw query} tuple
// spec.md §3 requires. Spider only ever sees origin-form request
// targets ("/path?query"); authority is filled in by the request parser
// from the Host header and Scheme is left empty, neither being parsed
// off the request target (no absolute-form / CONNECT support — a non-goal).
type URI struct {
	Scheme    string
	Authority string
	RawPath   string
	RawQuery  string
}

// Segments splits RawPath on '/', stripping the leading slash and
// eliding empty segments produced by "//", per spec.md §4.3.
func (u URI) Segments() []string {
	trimmed := strings.TrimPrefix(u.RawPath, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTarget splits a request-line target into raw path and raw query.
// Percent-decoding is the caller's responsibility (the body/form parser
// decodes its input; path segments reach the router's extractors
// undecoded).
func parseTarget(target string) (rawPath, rawQuery string) {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, ""
}
