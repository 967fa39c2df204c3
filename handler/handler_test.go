package handler

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alterationx10/spider"
)

func newReq(body string) *spider.Request {
	return &spider.Request{
		Method:     "POST",
		Header:     nil,
		Body:       io.NopCloser(strings.NewReader(body)),
		Attributes: spider.NewAttributes(),
	}
}

func TestBytesPassesRawBody(t *testing.T) {
	h := Bytes(func(req *spider.Request, body []byte) (*spider.Response, error) {
		return spider.NewResponse(spider.StatusOK, body), nil
	})
	resp, err := h(newReq("raw-bytes"))
	require.NoError(t, err)
	require.Equal(t, "raw-bytes", string(resp.Body))
}

func TestTextDecodesValidUTF8(t *testing.T) {
	h := Text(func(req *spider.Request, body string) (*spider.Response, error) {
		return spider.Text(spider.StatusOK, "got:"+body), nil
	})
	resp, err := h(newReq("héllo"))
	require.NoError(t, err)
	require.Equal(t, "got:héllo", string(resp.Body))
}

func TestTextRejectsInvalidUTF8(t *testing.T) {
	h := Text(func(req *spider.Request, body string) (*spider.Response, error) {
		t.Fatal("fn must not be called for invalid UTF-8")
		return nil, nil
	})
	_, err := h(newReq(string([]byte{0xff, 0xfe})))
	require.Error(t, err)
	var he *spider.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, spider.StatusBadRequest, he.Status)
}

type greetIn struct {
	Name string `json:"name"`
}

type greetOut struct {
	Greeting string `json:"greeting"`
}

func TestJSONDecodesAndEncodes(t *testing.T) {
	h := JSON(spider.StatusCreated, func(req *spider.Request, in greetIn) (greetOut, error) {
		return greetOut{Greeting: "hi " + in.Name}, nil
	})
	resp, err := h(newReq(`{"name":"ada"}`))
	require.NoError(t, err)
	require.Equal(t, spider.StatusCreated, resp.Status)
	require.JSONEq(t, `{"greeting":"hi ada"}`, string(resp.Body))
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestJSONRejectsMalformedBody(t *testing.T) {
	h := JSON(spider.StatusOK, func(req *spider.Request, in greetIn) (greetOut, error) {
		t.Fatal("fn must not be called for malformed JSON")
		return greetOut{}, nil
	})
	_, err := h(newReq(`{not json`))
	require.Error(t, err)
	var he *spider.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, spider.StatusBadRequest, he.Status)
}

func TestJSONPropagatesHandlerError(t *testing.T) {
	h := JSON(spider.StatusOK, func(req *spider.Request, in greetIn) (greetOut, error) {
		return greetOut{}, spider.NotFound("nope")
	})
	_, err := h(newReq(`{}`))
	require.Error(t, err)
	var he *spider.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, spider.StatusNotFound, he.Status)
}

func TestJSONEmptyBodyLeavesZeroValue(t *testing.T) {
	h := JSON(spider.StatusOK, func(req *spider.Request, in greetIn) (greetOut, error) {
		require.Equal(t, "", in.Name)
		return greetOut{Greeting: "empty"}, nil
	})
	_, err := h(newReq(""))
	require.NoError(t, err)
}

func TestRawPassesThroughUntouched(t *testing.T) {
	called := false
	inner := func(req *spider.Request) (*spider.Response, error) {
		called = true
		return spider.Empty(spider.StatusNoContent), nil
	}
	resp, err := Raw(inner)(newReq("anything"))
	require.NoError(t, err)
	require.True(t, called)
	require.Equal(t, spider.StatusNoContent, resp.Status)
}
