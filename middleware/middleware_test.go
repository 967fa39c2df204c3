package middleware

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

func newReq() *spider.Request {
	return &spider.Request{Header: hdr.New(), Attributes: spider.NewAttributes()}
}

func recordingMiddleware(name string, trace *[]string) Middleware {
	return Middleware{
		Pre: func(req *spider.Request) (Result, error) {
			*trace = append(*trace, name+".pre")
			return Continue(req), nil
		},
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			*trace = append(*trace, name+".post")
			return resp
		},
	}
}

func TestPipelineOrdersPreForwardPostBackward(t *testing.T) {
	var trace []string
	chain := New(
		recordingMiddleware("m1", &trace),
		recordingMiddleware("m2", &trace),
		recordingMiddleware("m3", &trace),
	)
	handler := func(*spider.Request) (*spider.Response, error) {
		trace = append(trace, "handler")
		return spider.Empty(spider.StatusOK), nil
	}

	_, err := chain.Wrap(handler)(newReq())
	require.NoError(t, err)
	require.Equal(t, []string{"m1.pre", "m2.pre", "m3.pre", "handler", "m3.post", "m2.post", "m1.post"}, trace)
}

func TestShortCircuitSkipsHandlerAndInnerPostButRunsOuterPost(t *testing.T) {
	var trace []string
	shortCircuit := Middleware{
		Pre: func(req *spider.Request) (Result, error) {
			trace = append(trace, "m2.pre")
			return Respond(spider.Text(spider.StatusForbidden, "nope")), nil
		},
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			trace = append(trace, "m2.post")
			return resp
		},
	}
	chain := New(
		recordingMiddleware("m1", &trace),
		shortCircuit,
		recordingMiddleware("m3", &trace),
	)
	handler := func(*spider.Request) (*spider.Response, error) {
		t.Fatal("handler must not run when m2.pre short-circuits")
		return nil, nil
	}

	resp, err := chain.Wrap(handler)(newReq())
	require.NoError(t, err)
	require.Equal(t, spider.StatusForbidden, resp.Status)
	require.Equal(t, []string{"m1.pre", "m2.pre", "m2.post", "m1.post"}, trace)
}

func TestChainThenConcatenates(t *testing.T) {
	var trace []string
	a := New(recordingMiddleware("a", &trace))
	b := New(recordingMiddleware("b", &trace))
	combined := a.Then(b)
	require.Len(t, combined, 2)

	_, err := combined.Wrap(func(*spider.Request) (*spider.Response, error) {
		return spider.Empty(spider.StatusOK), nil
	})(newReq())
	require.NoError(t, err)
	require.Equal(t, []string{"a.pre", "b.pre", "b.post", "a.post"}, trace)
}

func TestIdentityIsPassthrough(t *testing.T) {
	chain := New(Identity())
	resp, err := chain.Wrap(func(*spider.Request) (*spider.Response, error) {
		return spider.Text(spider.StatusOK, "hi"), nil
	})(newReq())
	require.NoError(t, err)
	require.Equal(t, "hi", string(resp.Body))
}

func TestHandlerErrorIsMappedBeforePostRuns(t *testing.T) {
	var postStatus int
	chain := New(Middleware{
		Pre: func(req *spider.Request) (Result, error) { return Continue(req), nil },
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			postStatus = resp.Status
			return resp
		},
	})
	resp, err := chain.Wrap(func(*spider.Request) (*spider.Response, error) {
		return nil, spider.NotFound("missing")
	})(newReq())
	require.NoError(t, err)
	require.Equal(t, spider.StatusNotFound, resp.Status)
	require.Equal(t, spider.StatusNotFound, postStatus)
}
