// Package middleware implements the pre/post pipeline from spec.md
// §4.7 and the stock middlewares of §4.8, adapted from the teacher's
// own handler-wrapping idiom (badu-http's server_handler.go composes
// http.Handler values the same way: outermost wraps innermost).
package middleware

import "github.com/alterationx10/spider"

// Result is what a Pre hook returns: either Continue(request') or
// Respond(response), spec.md §4.7's two outcomes.
type Result struct {
	Request  *spider.Request
	Response *spider.Response
	respond  bool
}

// Continue rewrites the request and lets the pipeline proceed.
func Continue(req *spider.Request) Result { return Result{Request: req} }

// Respond short-circuits the pipeline with resp.
func Respond(resp *spider.Response) Result { return Result{Response: resp, respond: true} }

// Middleware is the two-hook contract from spec.md §4.7.
type Middleware struct {
	// Pre may rewrite the request or short-circuit with Respond.
	Pre func(req *spider.Request) (Result, error)
	// Post may mutate the outgoing response.
	Post func(req *spider.Request, resp *spider.Response) *spider.Response
	// Around, when set, takes over entirely from Pre/Post: it receives
	// the rest of the chain as next and decides when (and whether) to
	// call it. Used by middlewares like Recover that must keep a real
	// call frame between themselves and the handler to defer/recover.
	Around func(req *spider.Request, next spider.Handler) (*spider.Response, error)
}

// Identity is the monoid identity: Continue unchanged, Post unchanged.
func Identity() Middleware {
	return Middleware{
		Pre:  func(req *spider.Request) (Result, error) { return Continue(req), nil },
		Post: func(_ *spider.Request, resp *spider.Response) *spider.Response { return resp },
	}
}

// Chain is an ordered list of middlewares, composed associatively:
// Chain(a, b).Then(c) == Chain(a, b, c) == Chain(a).Then(Chain(b, c)).
type Chain []Middleware

// New builds a Chain from individual middlewares, in outer-to-inner order.
func New(mw ...Middleware) Chain { return Chain(mw) }

// Then concatenates two chains.
func (c Chain) Then(other Chain) Chain {
	out := make(Chain, 0, len(c)+len(other))
	out = append(out, c...)
	out = append(out, other...)
	return out
}

// Wrap builds the final spider.Handler: m1.pre -> m2.pre -> ... -> h ->
// ... -> m2.post -> m1.post, per spec.md §4.7. Each middleware nests a
// real call frame around the rest of the chain, so a Respond from
// layer i's Pre skips the handler and every layer nested inside i, but
// layer i's own Post and every outer layer's Post still run — and a
// middleware's Around hook can recover a panic raised anywhere inside it.
func (c Chain) Wrap(h spider.Handler) spider.Handler {
	wrapped := h
	for i := len(c) - 1; i >= 0; i-- {
		wrapped = wrapOne(c[i], wrapped)
	}
	return wrapped
}

func wrapOne(mw Middleware, next spider.Handler) spider.Handler {
	if mw.Around != nil {
		return func(req *spider.Request) (*spider.Response, error) {
			return mw.Around(req, next)
		}
	}
	return func(req *spider.Request) (*spider.Response, error) {
		res, err := mw.Pre(req)
		if err != nil {
			return nil, err
		}
		cur := req
		if res.Request != nil {
			cur = res.Request
		}

		var resp *spider.Response
		if res.respond {
			resp = res.Response
		} else {
			resp, err = next(cur)
			if err != nil {
				resp = spider.FromError(err)
			}
		}
		return mw.Post(cur, resp), nil
	}
}
