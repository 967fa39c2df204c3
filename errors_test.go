package spider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPErrorConstructors(t *testing.T) {
	cases := []struct {
		err    *HTTPError
		status int
	}{
		{BadRequest("x"), StatusBadRequest},
		{PayloadTooLarge("x"), StatusPayloadTooLarge},
		{HeadersTooLarge("x"), StatusHeadersTooLarge},
		{UnsupportedMediaType("x"), StatusUnsupportedMediaType},
		{NotFound("x"), StatusNotFound},
		{MethodNotAllowed("x"), StatusMethodNotAllowed},
		{Unauthorized("x"), StatusUnauthorized},
		{Forbidden("x"), StatusForbidden},
		{RateLimited("x"), StatusTooManyRequests},
		{Internal("x"), StatusInternalServerError},
		{NotImplemented("x"), StatusNotImplemented},
	}
	for _, c := range cases {
		require.Equal(t, c.status, c.err.Status)
		require.Equal(t, "x", c.err.Message)
	}
}

func TestHTTPErrorErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("root cause")
	he := Wrap(StatusInternalServerError, "failed", cause)
	require.Equal(t, "failed: root cause", he.Error())
	require.Equal(t, "no cause", (&HTTPError{Message: "no cause"}).Error())
}

func TestHTTPErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	he := Wrap(StatusInternalServerError, "failed", cause)
	require.ErrorIs(t, he, cause)
}

func TestAsHTTPErrorFindsWrappedTaxonomyError(t *testing.T) {
	inner := NotFound("missing")
	wrapped := Wrap(StatusInternalServerError, "outer", inner)
	got := AsHTTPError(wrapped)
	require.Same(t, inner, got)
}

func TestAsHTTPErrorFallsBackToInternal(t *testing.T) {
	plain := errors.New("plain failure")
	got := AsHTTPError(plain)
	require.Equal(t, StatusInternalServerError, got.Status)
	require.ErrorIs(t, got, plain)
}

func TestAsHTTPErrorNil(t *testing.T) {
	require.Nil(t, AsHTTPError(nil))
}
