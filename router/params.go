package router

import (
	"github.com/google/uuid"

	"github.com/alterationx10/spider"
)

// Params returns the typed values bound by the matching route's
// extractors, keyed by extractor name.
func Params(req *spider.Request) map[string]any {
	v, ok := req.Attributes.Get(paramsKey)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// ParamInt returns the named int parameter, if the matching route bound one.
func ParamInt(req *spider.Request, name string) (int, bool) {
	v, ok := Params(req)[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// ParamInt64 returns the named int64 parameter.
func ParamInt64(req *spider.Request, name string) (int64, bool) {
	v, ok := Params(req)[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// ParamString returns the named string parameter.
func ParamString(req *spider.Request, name string) (string, bool) {
	v, ok := Params(req)[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ParamUUID returns the named UUID parameter.
func ParamUUID(req *spider.Request, name string) (uuid.UUID, bool) {
	v, ok := Params(req)[name]
	if !ok {
		return uuid.UUID{}, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// ParamRest returns the named catch-all remainder parameter.
func ParamRest(req *spider.Request, name string) ([]string, bool) {
	v, ok := Params(req)[name]
	if !ok {
		return nil, false
	}
	s, ok := v.([]string)
	return s, ok
}
