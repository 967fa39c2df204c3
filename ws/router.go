package ws

import (
	"bufio"
	"context"
	"net"

	"github.com/alterationx10/spider"
)

// HandlerFunc builds the Handler to serve an accepted connection for
// one matched route, given the upgrade request (so a handler can read
// handshake params spec.md §4.12 mentions).
type HandlerFunc func(req *spider.Request) Handler

type wsRoute struct {
	path    []string
	handler HandlerFunc
}

// Router is a path -> Handler dispatch table implementing
// spider.Upgrader, so it composes with the HTTP router the same way
// an HTTP route does (SPEC_FULL.md §6.7).
type Router struct {
	routes     []wsRoute
	maxPayload int64
}

// NewRouter returns an empty WebSocket router. maxPayload bounds a
// single frame's payload length for every connection it serves.
func NewRouter(maxPayload int64) *Router {
	return &Router{maxPayload: maxPayload}
}

// Handle registers fn for the exact path segments given.
func (r *Router) Handle(path []string, fn HandlerFunc) {
	r.routes = append(r.routes, wsRoute{path: path, handler: fn})
}

// ShouldUpgrade implements spider.Upgrader: true only for a registered
// path carrying a valid WebSocket handshake.
func (r *Router) ShouldUpgrade(req *spider.Request) bool {
	if !ShouldUpgrade(req) {
		return false
	}
	_, ok := r.match(req.Path())
	return ok
}

// Upgrade implements spider.Upgrader: completes the handshake and runs
// the matched handler's connection loop until close.
func (r *Router) Upgrade(ctx context.Context, conn net.Conn, br *bufio.Reader, req *spider.Request) error {
	fn, ok := r.match(req.Path())
	if !ok {
		return spider.NotFound("no websocket route matched")
	}
	bw := bufio.NewWriter(conn)
	if err := Handshake(bw, req); err != nil {
		return err
	}
	c := NewConn(conn, br, bw, r.maxPayload)
	c.Serve(ctx, fn(req))
	return nil
}

func (r *Router) match(segments []string) (HandlerFunc, bool) {
	for _, rt := range r.routes {
		if pathEqual(rt.path, segments) {
			return rt.handler, true
		}
	}
	return nil, false
}

func pathEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
