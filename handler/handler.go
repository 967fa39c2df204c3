// Package handler implements the typed request/response handler
// contract from spec.md §4.4: a handler with an input type I, an
// output type O, a body decoder, and a body encoder. Default codecs
// for bytes, text, and JSON are provided; JSON delegates to
// json-iterator/go as the external JSON module spec.md §1 carves out
// of the core's scope.
package handler

import (
	"io"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Bytes adapts fn (raw request body in, raw response body out) into a
// spider.Handler. This is the identity codec from spec.md §4.4.
func Bytes(fn func(*spider.Request, []byte) (*spider.Response, error)) spider.Handler {
	return func(req *spider.Request) (*spider.Response, error) {
		body, err := readAll(req)
		if err != nil {
			return nil, err
		}
		return fn(req, body)
	}
}

// Text adapts fn to receive the body decoded as UTF-8 text, rejecting
// bodies that are not valid UTF-8 with BadRequest.
func Text(fn func(*spider.Request, string) (*spider.Response, error)) spider.Handler {
	return func(req *spider.Request) (*spider.Response, error) {
		body, err := readAll(req)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(body) {
			return nil, spider.BadRequest("request body is not valid UTF-8")
		}
		return fn(req, string(body))
	}
}

// JSON adapts fn to receive the body decoded into I and encodes its
// returned O as the JSON response body with the given status, setting
// Content-Type: application/json.
func JSON[I any, O any](status int, fn func(*spider.Request, I) (O, error)) spider.Handler {
	return func(req *spider.Request) (*spider.Response, error) {
		body, err := readAll(req)
		if err != nil {
			return nil, err
		}
		var in I
		if len(body) > 0 {
			if err := json.Unmarshal(body, &in); err != nil {
				return nil, spider.Wrap(spider.StatusBadRequest, "malformed JSON body", err)
			}
		}
		out, err := fn(req, in)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(out)
		if err != nil {
			return nil, spider.Wrap(spider.StatusInternalServerError, "failed to encode response", err)
		}
		resp := spider.NewResponse(status, encoded)
		resp.Header.Set(hdr.ContentType, "application/json")
		return resp, nil
	}
}

// Raw passes the request straight through, body untouched (the
// streaming handler variant from spec.md §4.4: the handler reads
// req.Body itself, pull-style, and may return either an eager or a
// streaming Response).
func Raw(fn spider.Handler) spider.Handler { return fn }

func readAll(req *spider.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, spider.Wrap(spider.StatusBadRequest, "failed to read request body", err)
	}
	return b, nil
}
