package spider

import "github.com/alterationx10/spider/hdr"

// Writer is the streaming-emitter contract from spec.md §4.6: a
// callback-facing writer that the connection runtime funnels through
// either a length-delimited or a chunked-encoding adapter depending on
// whether Content-Length is known ahead of time.
type Writer interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
	Flush() error
	WriteFlush(p []byte) (int, error)
}

// StreamFunc is invoked by the connection runtime with a Writer bound to
// the response in progress.
type StreamFunc func(w Writer) error

// Response is the {status, headers, body} tuple from spec.md §3. Body is
// eager (already in memory) unless Stream is set, in which case the
// runtime calls Stream to produce the body incrementally.
type Response struct {
	Status int
	Header hdr.Header
	Body   []byte
	Stream StreamFunc
}

// NewResponse returns an eager response with the given status and body.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Header: hdr.New(), Body: body}
}

// Text returns a 200 text/plain response (or the given status).
func Text(status int, body string) *Response {
	r := NewResponse(status, []byte(body))
	r.Header.Set(hdr.ContentType, "text/plain; charset=utf-8")
	return r
}

// Empty returns a response with the given status and no body.
func Empty(status int) *Response {
	return NewResponse(status, nil)
}

// FromError maps an error through the taxonomy (errors.go) into a
// client-safe response. The cause, if any, is not included in the body.
func FromError(err error) *Response {
	he := AsHTTPError(err)
	return Text(he.Status, he.Message)
}
