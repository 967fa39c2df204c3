package spider

import (
	"context"
	"io"

	"github.com/alterationx10/spider/hdr"
)

// Request is the immutable tuple spec.md §3 describes, save for Body
// (a stream, consumed at most once) and Attributes (deliberately
// mutable, scoped to the request's lifetime).
type Request struct {
	Method     string
	URI        URI
	Proto      string
	Header     hdr.Header
	Body       io.ReadCloser
	Attributes *Attributes
	RemoteAddr string

	ctx context.Context
}

// Context returns the request's context, defaulting to Background.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context replaced.
func (r *Request) WithContext(ctx context.Context) *Request {
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}

// Path returns the normalized path segments (spec.md §4.3: "/a//b" -> [a b]).
func (r *Request) Path() []string { return r.URI.Segments() }

var noBody = noBodyReader{}

type noBodyReader struct{}

func (noBodyReader) Read([]byte) (int, error) { return 0, io.EOF }
func (noBodyReader) Close() error             { return nil }

// NoBody is an always-empty, always-closed request/response body.
var NoBody io.ReadCloser = noBody
