package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

// Event is one Server-Sent Event, per spec.md §4.6.
type Event struct {
	ID    string
	Event string
	Retry time.Duration
	Data  string
}

// Write serializes e in SSE wire format to w: optional id/event/retry
// lines, one "data:" line per line of Data, terminated by a blank line.
func (e Event) Write(w spider.Writer) error {
	var b strings.Builder
	if e.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", e.ID)
	}
	if e.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", e.Event)
	}
	if e.Retry > 0 {
		fmt.Fprintf(&b, "retry: %d\n", e.Retry.Milliseconds())
	}
	lines := strings.Split(e.Data, "\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteByte('\n')
	_, err := w.WriteFlush([]byte(b.String()))
	return err
}

// NewSSEResponse starts an SSE response, setting the headers spec.md
// §4.6 requires, and streams events produced by fn until it returns.
func NewSSEResponse(fn func(ctx context.Context, send func(Event) error) error) *spider.Response {
	resp := spider.NewResponse(spider.StatusOK, nil)
	resp.Header.Set(hdr.ContentType, "text/event-stream")
	resp.Header.Set(hdr.CacheControl, "no-cache")
	resp.Header.Set(hdr.Connection, "keep-alive")
	resp.Stream = func(w spider.Writer) error {
		return fn(context.Background(), func(ev Event) error { return ev.Write(w) })
	}
	return resp
}

// Heartbeat writes an SSE comment ping (": ping\n\n") to w every d,
// until ctx is cancelled or a write fails. Run it in its own goroutine
// alongside the event producer; it returns the first write error, or
// ctx.Err() on cancellation.
func Heartbeat(ctx context.Context, w spider.Writer, d time.Duration) error {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.WriteFlush([]byte(": ping\n\n")); err != nil {
				return err
			}
		}
	}
}
