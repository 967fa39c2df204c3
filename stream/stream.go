// Package stream implements the streaming engine from spec.md §4.6:
// a callback-based emitter atop spider.Writer, Server-Sent Events
// framing, file streaming, and the read-side helpers for streaming
// request ingestion.
package stream

import (
	"bufio"
	"io"

	"github.com/alterationx10/spider"
)

// Emitter is a spider.StreamFunc builder: Write a response body
// incrementally through the Writer the connection runtime supplies,
// choosing a length-delimited or chunked adapter on its own.
type Emitter = spider.StreamFunc

// File streams the contents of r through w, in blocks of bufSize (0
// uses a 32KiB default), flushing after each block.
func File(r io.Reader, bufSize int) Emitter {
	if bufSize <= 0 {
		bufSize = 32 << 10
	}
	return func(w spider.Writer) error {
		buf := make([]byte, bufSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if _, werr := w.WriteFlush(buf[:n]); werr != nil {
					return werr
				}
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

// Reader wraps request-body ingestion for the streaming-handler
// variant, per spec.md §4.6's "streaming request ingestion" helpers:
// callback-driven (ReadChunks) or explicit pull-based (Read/Skip/
// ReadRemaining) consumption.
type Reader struct {
	br *bufio.Reader
	r  io.Reader
}

// NewReader wraps a request body for pull-based or callback-driven
// consumption.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r), r: r}
}

// ReadChunks invokes fn with successive blocks of at most size bytes
// until the reader is exhausted or fn returns an error.
func (sr *Reader) ReadChunks(size int, fn func([]byte) error) error {
	if size <= 0 {
		size = 32 << 10
	}
	buf := make([]byte, size)
	for {
		n, err := sr.br.Read(buf)
		if n > 0 {
			if ferr := fn(buf[:n]); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Read reads up to max bytes (explicit pull-based consumption).
func (sr *Reader) Read(max int) ([]byte, error) {
	buf := make([]byte, max)
	n, err := sr.br.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// Skip discards the next n bytes.
func (sr *Reader) Skip(n int64) error {
	_, err := io.CopyN(io.Discard, sr.br, n)
	return err
}

// ReadRemaining reads and returns everything left in the stream.
func (sr *Reader) ReadRemaining() ([]byte, error) {
	return io.ReadAll(sr.br)
}
