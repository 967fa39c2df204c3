package spider

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/alterationx10/spider/hdr"
)

// Handler serves one fully-parsed request. Middleware composition
// (spec.md §4.7) happens above this contract, in the middleware
// package; Server only ever calls the single Handler it was given.
type Handler func(*Request) (*Response, error)

// Upgrader lets the connection runtime hand a hijacked socket to a
// different protocol (the WebSocket runtime, spec.md §4.10) without the
// root package importing it — ws.Router implements this interface.
type Upgrader interface {
	// ShouldUpgrade inspects the request's headers to decide whether
	// this request is a protocol upgrade this Upgrader handles.
	ShouldUpgrade(req *Request) bool
	// Upgrade takes ownership of conn for the remainder of its
	// lifetime; Serve does not touch conn again after this returns.
	Upgrade(ctx context.Context, conn net.Conn, br *bufio.Reader, req *Request) error
}

// Server is the connection runtime from spec.md §4.2: an accept loop
// that spawns one goroutine per connection, each looping through
// keep-alive requests until the client, the response, or a configured
// limit ends the connection.
type Server struct {
	Config   Config
	Handler  Handler
	Upgrader Upgrader
	Log      *logrus.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	group    *errgroup.Group
}

// NewServer builds a Server with the given config and handler. If log
// is nil a default logrus.Logger is used.
func NewServer(cfg Config, h Handler, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{Config: cfg, Handler: h, Log: log}
}

// ListenAndServe listens on Config.Port and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.Config.Port))
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on ln until Shutdown is called or Accept
// fails permanently.
func (s *Server) Serve(ln net.Listener) error {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	s.mu.Lock()
	s.listener = ln
	s.cancel = cancel
	s.group = g
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return s.group.Wait()
			}
			return err
		}
		g.Go(func() error {
			s.handleConn(gctx, conn)
			return nil
		})
	}
}

// Shutdown closes the listener and waits (bounded by ctx) for in-flight
// connections to finish. Idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	cancel := s.cancel
	g := s.group
	s.mu.Unlock()

	if ln == nil {
		return nil
	}
	ln.Close()
	if cancel != nil {
		cancel()
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleConn(ctx context.Context, nc net.Conn) {
	defer nc.Close()
	br := bufio.NewReader(nc)
	bw := bufio.NewWriter(nc)

	requestCount := 0
	for {
		if s.Config.SocketTimeout > 0 {
			nc.SetReadDeadline(time.Now().Add(s.Config.SocketTimeout))
		}

		req, err := ReadRequest(br, s.Config)
		if err != nil {
			if !isCleanDisconnect(err) {
				s.writeBestEffortError(bw, err)
			}
			return
		}
		req.RemoteAddr = nc.RemoteAddr().String()
		req.ctx = ctx

		requestCount++

		if s.Upgrader != nil && s.Upgrader.ShouldUpgrade(req) {
			drainBody(req)
			if err := s.Upgrader.Upgrade(ctx, nc, br, req); err != nil {
				s.Log.WithError(err).Debug("spider: websocket upgrade failed")
			}
			return // the upgrader owns the socket from here on
		}

		resp, herr := s.dispatch(req)
		if herr != nil {
			resp = FromError(herr)
			if resp.Status == StatusInternalServerError {
				s.Log.WithError(herr).Error("spider: handler error")
			}
		}
		keepAlive := s.shouldKeepAlive(req, resp, requestCount)
		applyConnectionHeader(resp, keepAlive)

		if err := WriteResponse(bw, resp); err != nil {
			return
		}
		if err := bw.Flush(); err != nil {
			return
		}
		drainBody(req)

		if !keepAlive {
			return
		}
	}
}

func (s *Server) dispatch(req *Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.WithField("panic", r).Error("spider: handler panic")
			resp, err = nil, Internal("internal server error")
		}
	}()
	return s.Handler(req)
}

func (s *Server) shouldKeepAlive(req *Request, resp *Response, count int) bool {
	if !s.Config.EnableKeepAlive {
		return false
	}
	if s.Config.MaxKeepAliveRequests > 0 && count >= s.Config.MaxKeepAliveRequests {
		return false
	}
	conn := strings.ToLower(req.Header.Get(hdr.Connection))
	if strings.Contains(conn, "close") {
		return false
	}
	if req.Proto == "HTTP/1.0" && !strings.Contains(conn, "keep-alive") {
		return false
	}
	if resp.Header != nil {
		rc := strings.ToLower(resp.Header.Get(hdr.Connection))
		if strings.Contains(rc, "close") {
			return false
		}
	}
	return true
}

func applyConnectionHeader(resp *Response, keepAlive bool) {
	if resp.Header == nil {
		resp.Header = hdr.New()
	}
	if keepAlive {
		resp.Header.Set(hdr.Connection, "keep-alive")
	} else {
		resp.Header.Set(hdr.Connection, "close")
	}
}

// drainBody discards any unread request body so the connection can be
// reused for the next pipelined request.
func drainBody(req *Request) {
	if req.Body == nil {
		return
	}
	buf := make([]byte, 32<<10)
	for {
		_, err := req.Body.Read(buf)
		if err != nil {
			break
		}
	}
	req.Body.Close()
}

func (s *Server) writeBestEffortError(bw *bufio.Writer, err error) {
	resp := FromError(err)
	resp.Header = hdr.New()
	resp.Header.Set(hdr.Connection, "close")
	_ = WriteResponse(bw, resp)
	_ = bw.Flush()
}

// isCleanDisconnect distinguishes a peer that simply hung up (EOF on an
// idle keep-alive connection, or a read timeout) from a genuine
// protocol violation worth a best-effort error response.
func isCleanDisconnect(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
