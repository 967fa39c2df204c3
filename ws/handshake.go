package ws

import (
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"strings"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

const magicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// ShouldUpgrade reports whether req carries the headers a WebSocket
// handshake requires, per spec.md §4.10.
func ShouldUpgrade(req *spider.Request) bool {
	if !strings.EqualFold(req.Header.Get(hdr.Upgrade), "websocket") {
		return false
	}
	if !containsToken(req.Header.Get(hdr.Connection), "upgrade") {
		return false
	}
	return req.Header.Get(hdr.SecWebSocketVersion) == "13" && req.Header.Get(hdr.SecWebSocketKey) != ""
}

func containsToken(header, token string) bool {
	for _, part := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// AcceptKey computes the Sec-WebSocket-Accept value for key, per
// spec.md §4.10: base64(SHA-1(key + magic GUID)).
func AcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + magicGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Handshake writes the 101 Switching Protocols response for req,
// returning an error describing why the handshake failed (the caller
// should respond 400 and close the connection; spec.md §4.10).
func Handshake(bw *bufio.Writer, req *spider.Request) error {
	if !ShouldUpgrade(req) {
		return spider.BadRequest("invalid websocket handshake headers")
	}
	accept := AcceptKey(req.Header.Get(hdr.SecWebSocketKey))

	resp := spider.Empty(spider.StatusSwitchingProtocols)
	resp.Header.Set(hdr.Upgrade, "websocket")
	resp.Header.Set(hdr.Connection, "Upgrade")
	resp.Header.Set(hdr.SecWebSocketAccept, accept)

	if _, err := bw.WriteString("HTTP/1.1 101 Switching Protocols\r\n"); err != nil {
		return err
	}
	if err := resp.Header.Write(bw); err != nil {
		return err
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	return bw.Flush()
}
