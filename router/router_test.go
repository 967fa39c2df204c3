package router

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

func newReq(method, path string) *spider.Request {
	rawPath, rawQuery := path, ""
	if i := indexByte(path, '?'); i >= 0 {
		rawPath, rawQuery = path[:i], path[i+1:]
	}
	return &spider.Request{
		Method:     method,
		URI:        spider.URI{RawPath: rawPath, RawQuery: rawQuery},
		Header:     hdr.New(),
		Attributes: spider.NewAttributes(),
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func okHandler(body string) spider.Handler {
	return func(*spider.Request) (*spider.Response, error) {
		return spider.Text(spider.StatusOK, body), nil
	}
}

func TestSegmentsNormalizeDoubleSlash(t *testing.T) {
	req := newReq("GET", "/a//b")
	require.Equal(t, []string{"a", "b"}, req.Path())
}

func TestRouterDispatchesFirstMatch(t *testing.T) {
	r := New()
	calls := 0
	r.Get(Path(Lit("a")), func(req *spider.Request) (*spider.Response, error) {
		calls++
		return spider.Empty(spider.StatusOK), nil
	})
	r.Get(Path(Lit("a")), func(req *spider.Request) (*spider.Response, error) {
		t.Fatal("second matching route must not run")
		return nil, nil
	})

	resp, err := r.Serve(newReq("GET", "/a"))
	require.NoError(t, err)
	require.Equal(t, spider.StatusOK, resp.Status)
	require.Equal(t, 1, calls)
}

func TestRouterNotFound(t *testing.T) {
	r := New()
	r.Get(Path(Lit("a")), okHandler("a"))
	_, err := r.Serve(newReq("GET", "/b"))
	require.Error(t, err)
	var he *spider.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, spider.StatusNotFound, he.Status)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := New()
	r.Get(Path(Lit("a")), okHandler("a"))
	_, err := r.Serve(newReq("POST", "/a"))
	require.Error(t, err)
	var he *spider.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, spider.StatusMethodNotAllowed, he.Status)
}

func TestIntExtractorSkipsNonMatchingSegment(t *testing.T) {
	r := New()
	r.Get(Path(Lit("users"), Int("id")), func(req *spider.Request) (*spider.Response, error) {
		id, _ := ParamInt(req, "id")
		return spider.Text(spider.StatusOK, "user"+strconv.Itoa(id)), nil
	})

	_, err := r.Serve(newReq("GET", "/users/abc"))
	require.Error(t, err)
	var he *spider.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, spider.StatusNotFound, he.Status)

	resp, err := r.Serve(newReq("GET", "/users/42"))
	require.NoError(t, err)
	require.Equal(t, "user42", string(resp.Body))
}

func TestUUIDExtractorBindsParsedValue(t *testing.T) {
	r := New()
	var got uuid.UUID
	r.Get(Path(Lit("items"), UUID("id")), func(req *spider.Request) (*spider.Response, error) {
		got, _ = ParamUUID(req, "id")
		return spider.Empty(spider.StatusOK), nil
	})

	id := uuid.New()
	_, err := r.Serve(newReq("GET", "/items/"+id.String()))
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestRestSegmentCapturesRemainder(t *testing.T) {
	r := New()
	var rest []string
	r.Get(Path(Lit("files"), Rest("path")), func(req *spider.Request) (*spider.Response, error) {
		rest, _ = ParamRest(req, "path")
		return spider.Empty(spider.StatusOK), nil
	})
	_, err := r.Serve(newReq("GET", "/files/a/b/c"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, rest)
}

func TestGroupPrefixesRoutes(t *testing.T) {
	r := New()
	api := r.Group(Lit("api"), Lit("v1"))
	api.Get(Path(Lit("ping")), okHandler("pong"))

	resp, err := r.Serve(newReq("GET", "/api/v1/ping"))
	require.NoError(t, err)
	require.Equal(t, "pong", string(resp.Body))
}

func TestAnyMethodRouteMatchesEveryVerb(t *testing.T) {
	r := New()
	r.Handle("", Path(Lit("health")), okHandler("ok"))

	for _, method := range []string{"GET", "POST", "DELETE"} {
		resp, err := r.Serve(newReq(method, "/health"))
		require.NoError(t, err)
		require.Equal(t, "ok", string(resp.Body))
	}
}
