package middleware

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

func TestRequestIDEchoesOnResponse(t *testing.T) {
	chain := New(RequestID())
	var seenInHandler string
	resp, err := chain.Wrap(func(req *spider.Request) (*spider.Response, error) {
		seenInHandler = req.Attributes.GetString(RequestIDKey)
		return spider.Empty(spider.StatusOK), nil
	})(newReq())
	require.NoError(t, err)
	require.NotEmpty(t, seenInHandler)
	require.Equal(t, seenInHandler, resp.Header.Get(hdr.XRequestID))
}

func TestRequestIDDiffersPerRequest(t *testing.T) {
	chain := New(RequestID())
	handler := func(req *spider.Request) (*spider.Response, error) {
		return spider.Empty(spider.StatusOK), nil
	}
	r1, _ := chain.Wrap(handler)(newReq())
	r2, _ := chain.Wrap(handler)(newReq())
	require.NotEqual(t, r1.Header.Get(hdr.XRequestID), r2.Header.Get(hdr.XRequestID))
}
