package spider

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkedRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"short", "hello"},
		{"spanning multiple chunks", string(bytes.Repeat([]byte("0123456789"), 500))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var encoded bytes.Buffer
			cw := newChunkedWriter(&encoded)
			_, err := cw.Write([]byte(tc.body))
			require.NoError(t, err)
			require.NoError(t, cw.Close())

			cr := newChunkedReader(bufio.NewReader(&encoded), 0)
			got, err := io.ReadAll(cr)
			require.NoError(t, err)
			require.Equal(t, tc.body, string(got))
		})
	}
}

func TestChunkedReaderEnforcesLimit(t *testing.T) {
	var encoded bytes.Buffer
	cw := newChunkedWriter(&encoded)
	_, err := cw.Write(bytes.Repeat([]byte("x"), 100))
	require.NoError(t, err)
	require.NoError(t, cw.Close())

	cr := newChunkedReader(bufio.NewReader(&encoded), 10)
	_, err = io.ReadAll(cr)
	require.Error(t, err)
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, StatusPayloadTooLarge, he.Status)
}

func TestChunkedReaderRejectsMalformedTerminator(t *testing.T) {
	raw := "5\r\nhelloXX0\r\n\r\n"
	cr := newChunkedReader(bufio.NewReader(bytes.NewReader([]byte(raw))), 0)
	buf := make([]byte, 5)
	_, err := io.ReadFull(cr, buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf))
	_, err = cr.Read(make([]byte, 1))
	require.Error(t, err)
}
