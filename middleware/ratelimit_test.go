package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

func TestRateLimitAllowsUpToLimitThenRejects(t *testing.T) {
	mw := RateLimit(RateLimitConfig{
		MaxRequests: 3,
		Window:      time.Second,
		KeyFunc:     func(*spider.Request) string { return "fixed-key" },
	})
	chain := New(mw)
	handler := func(*spider.Request) (*spider.Response, error) {
		return spider.Empty(spider.StatusOK), nil
	}

	var last *spider.Response
	for i := 0; i < 3; i++ {
		resp, err := chain.Wrap(handler)(newReq())
		require.NoError(t, err)
		require.Equal(t, spider.StatusOK, resp.Status)
		last = resp
	}
	require.Equal(t, "3", last.Header.Get("X-RateLimit-Limit"))

	resp, err := chain.Wrap(handler)(newReq())
	require.NoError(t, err)
	require.Equal(t, spider.StatusTooManyRequests, resp.Status)
	require.NotEmpty(t, resp.Header.Get(hdr.RetryAfter))
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	mw := RateLimit(RateLimitConfig{
		MaxRequests: 1,
		Window:      time.Second,
		KeyFunc:     func(req *spider.Request) string { return req.RemoteAddr },
	})
	chain := New(mw)
	handler := func(*spider.Request) (*spider.Response, error) {
		return spider.Empty(spider.StatusOK), nil
	}

	reqA := newReq()
	reqA.RemoteAddr = "1.1.1.1"
	reqB := newReq()
	reqB.RemoteAddr = "2.2.2.2"

	respA, err := chain.Wrap(handler)(reqA)
	require.NoError(t, err)
	require.Equal(t, spider.StatusOK, respA.Status)

	respB, err := chain.Wrap(handler)(reqB)
	require.NoError(t, err)
	require.Equal(t, spider.StatusOK, respB.Status, "a distinct key must have its own bucket")
}
