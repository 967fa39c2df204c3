package spider

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/alterationx10/spider/hdr"
)

// WriteResponse serializes resp onto bw per spec.md §4.1: status line,
// headers, blank line, then the body — eager bytes written verbatim
// (Content-Length set if missing) or streamed through Stream, chunked
// unless the handler already declared a Content-Length.
func WriteResponse(bw *bufio.Writer, resp *Response) error {
	if resp.Header == nil {
		resp.Header = hdr.New()
	}

	if resp.Stream == nil {
		if resp.Header.Get(hdr.ContentLength) == "" {
			resp.Header.Set(hdr.ContentLength, strconv.Itoa(len(resp.Body)))
		}
		if err := writeStatusAndHeaders(bw, resp); err != nil {
			return err
		}
		_, err := bw.Write(resp.Body)
		return err
	}

	chunked := resp.Header.Get(hdr.ContentLength) == ""
	if chunked {
		resp.Header.Set(hdr.TransferEncoding, "chunked")
	}
	if err := writeStatusAndHeaders(bw, resp); err != nil {
		return err
	}

	var w Writer
	if chunked {
		w = &chunkedStreamWriter{cw: newChunkedWriter(bw), flush: bw.Flush}
	} else {
		w = &plainStreamWriter{w: bw, flush: bw.Flush}
	}
	if err := resp.Stream(w); err != nil {
		return err
	}
	if chunked {
		if err := w.(*chunkedStreamWriter).cw.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeStatusAndHeaders(bw *bufio.Writer, resp *Response) error {
	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", resp.Status, StatusPhrase(resp.Status)); err != nil {
		return err
	}
	if err := resp.Header.Write(bw); err != nil {
		return err
	}
	_, err := bw.WriteString("\r\n")
	return err
}

// plainStreamWriter backs the emitter when Content-Length is known: raw
// bytes, no chunk framing.
type plainStreamWriter struct {
	w     io.Writer
	flush func() error
}

func (p *plainStreamWriter) Write(b []byte) (int, error)        { return p.w.Write(b) }
func (p *plainStreamWriter) WriteString(s string) (int, error)  { return io.WriteString(p.w, s) }
func (p *plainStreamWriter) Flush() error                       { return p.flush() }
func (p *plainStreamWriter) WriteFlush(b []byte) (int, error) {
	n, err := p.Write(b)
	if err != nil {
		return n, err
	}
	return n, p.Flush()
}

// chunkedStreamWriter backs the emitter when Content-Length is not
// known: every Write call (and WriteFlush) becomes one wire chunk.
type chunkedStreamWriter struct {
	cw    *chunkedWriter
	flush func() error
}

func (c *chunkedStreamWriter) Write(b []byte) (int, error)       { return c.cw.Write(b) }
func (c *chunkedStreamWriter) WriteString(s string) (int, error) { return c.cw.Write([]byte(s)) }
func (c *chunkedStreamWriter) Flush() error                      { return c.flush() }
func (c *chunkedStreamWriter) WriteFlush(b []byte) (int, error) {
	n, err := c.Write(b)
	if err != nil {
		return n, err
	}
	return n, c.Flush()
}
