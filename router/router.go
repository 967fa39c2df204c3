// Package router implements the typed dispatch table from spec.md
// §4.3: a partial function from (method, path-segments) to a handler,
// with typed path extractors as pattern guards. Adapted from the
// teacher's mux.ServeMux (longest-prefix string matching) into the
// segment/extractor model the spec calls for, per the redesign flag in
// spec.md §9 ("surface as a typed dispatch table ... pattern match
// order = registration order; first match wins").
package router

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/alterationx10/spider"
)

const paramsKey = "router.params"

// segKind distinguishes the three pattern types spec.md §9 names.
type segKind int

const (
	kindLiteral segKind = iota
	kindExtractor
	kindRest
)

// Extractor parses one path segment into a typed value. A non-matching
// extractor makes the whole route skip, per spec.md §4.3.
type Extractor struct {
	Name  string
	Parse func(segment string) (any, bool)
}

// Segment is one element of a registered route pattern.
type Segment struct {
	kind      segKind
	literal   string
	extractor Extractor
}

// Lit matches a fixed path segment exactly.
func Lit(s string) Segment { return Segment{kind: kindLiteral, literal: s} }

// Int binds a decimal integer segment under name.
func Int(name string) Segment {
	return extractorSegment(name, func(s string) (any, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	})
}

// Int64 binds a decimal 64-bit integer segment under name.
func Int64(name string) Segment {
	return extractorSegment(name, func(s string) (any, bool) {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	})
}

// Float64 binds a decimal float segment under name.
func Float64(name string) Segment {
	return extractorSegment(name, func(s string) (any, bool) {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	})
}

// Bool binds a "true"/"false" segment under name.
func Bool(name string) Segment {
	return extractorSegment(name, func(s string) (any, bool) {
		b, err := strconv.ParseBool(s)
		return b, err == nil
	})
}

// UUID binds a UUID-formatted segment under name.
func UUID(name string) Segment {
	return extractorSegment(name, func(s string) (any, bool) {
		id, err := uuid.Parse(s)
		return id, err == nil
	})
}

// Regex binds a segment matching re, stored as the raw string.
func Regex(name string, re RegexMatcher) Segment {
	return extractorSegment(name, func(s string) (any, bool) {
		return s, re.MatchString(s)
	})
}

// RegexMatcher is the minimal surface router.Regex needs from
// *regexp.Regexp, so callers can pass one without this package
// importing "regexp" for a single method.
type RegexMatcher interface{ MatchString(string) bool }

// Str binds a segment, unconditionally, as a string (no validation).
func Str(name string) Segment {
	return extractorSegment(name, func(s string) (any, bool) { return s, true })
}

func extractorSegment(name string, parse func(string) (any, bool)) Segment {
	return Segment{kind: kindExtractor, extractor: Extractor{Name: name, Parse: parse}}
}

// Rest captures every remaining segment as []string under name. It must
// be the last segment in a pattern.
func Rest(name string) Segment {
	return Segment{kind: kindRest, extractor: Extractor{Name: name}}
}

type route struct {
	method  string // "" means any method
	pattern []Segment
	handler spider.Handler
}

// Router is a partial function (method, segments) -> handler, matched
// in registration order, first match wins. All routers derived from one
// another via Group share a single underlying table, so registration
// order is preserved globally regardless of which group a route was
// added through.
type Router struct {
	table  *[]route
	prefix []Segment
}

// New returns an empty Router.
func New() *Router { return &Router{table: &[]route{}} }

// Group returns a sub-router whose routes are all registered under the
// given prefix segments, composing via the same route table (spec.md
// §4.3: "prefixing prepends a fixed segment list to every route").
func (r *Router) Group(prefix ...Segment) *Router {
	return &Router{table: r.table, prefix: append(append([]Segment{}, r.prefix...), prefix...)}
}

// Handle registers h for method (or "" for any method) at the given
// pattern, under this router's group prefix.
func (r *Router) Handle(method string, pattern []Segment, h spider.Handler) {
	full := append(append([]Segment{}, r.prefix...), pattern...)
	*r.table = append(*r.table, route{method: method, pattern: full, handler: h})
}

// Get, Post, Put, Delete, Patch register a route for the named method.
func (r *Router) Get(pattern []Segment, h spider.Handler)    { r.Handle("GET", pattern, h) }
func (r *Router) Post(pattern []Segment, h spider.Handler)   { r.Handle("POST", pattern, h) }
func (r *Router) Put(pattern []Segment, h spider.Handler)    { r.Handle("PUT", pattern, h) }
func (r *Router) Delete(pattern []Segment, h spider.Handler) { r.Handle("DELETE", pattern, h) }
func (r *Router) Patch(pattern []Segment, h spider.Handler)  { r.Handle("PATCH", pattern, h) }

// Path is sugar for building a []Segment literally.
func Path(segs ...Segment) []Segment { return segs }

// RouteInfo describes one registered route, for introspection (e.g. a
// CLI "routes" subcommand).
type RouteInfo struct {
	Method  string // "*" for any method
	Pattern string
}

// Routes returns every registered route in registration order.
func (r *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(*r.table))
	for _, rt := range *r.table {
		method := rt.method
		if method == "" {
			method = "*"
		}
		out = append(out, RouteInfo{Method: method, Pattern: patternString(rt.pattern)})
	}
	return out
}

func patternString(pattern []Segment) string {
	var b strings.Builder
	for _, seg := range pattern {
		b.WriteByte('/')
		switch seg.kind {
		case kindLiteral:
			b.WriteString(seg.literal)
		case kindExtractor:
			b.WriteByte(':')
			b.WriteString(seg.extractor.Name)
		case kindRest:
			b.WriteByte('*')
			b.WriteString(seg.extractor.Name)
		}
	}
	return b.String()
}

// match attempts to bind req's path segments against pattern, returning
// the bound parameters on success.
func match(pattern []Segment, segments []string) (map[string]any, bool) {
	params := map[string]any{}
	i := 0
	for _, seg := range pattern {
		if seg.kind == kindRest {
			params[seg.extractor.Name] = append([]string{}, segments[i:]...)
			return params, true
		}
		if i >= len(segments) {
			return nil, false
		}
		switch seg.kind {
		case kindLiteral:
			if segments[i] != seg.literal {
				return nil, false
			}
		case kindExtractor:
			v, ok := seg.extractor.Parse(segments[i])
			if !ok {
				return nil, false
			}
			params[seg.extractor.Name] = v
		}
		i++
	}
	return params, i == len(segments)
}

// Serve implements spider.Handler: dispatch in registration order,
// first match wins; a path match under a different method yields 405;
// no path match at all yields 404.
func (r *Router) Serve(req *spider.Request) (*spider.Response, error) {
	segments := req.Path()
	pathMatched := false
	for _, rt := range *r.table {
		params, ok := match(rt.pattern, segments)
		if !ok {
			continue
		}
		pathMatched = true
		if rt.method != "" && rt.method != req.Method {
			continue
		}
		req.Attributes.Set(paramsKey, params)
		return rt.handler(req)
	}
	if pathMatched {
		return nil, spider.MethodNotAllowed("method not allowed for this path")
	}
	return nil, spider.NotFound("no route matched")
}
