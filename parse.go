package spider

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/alterationx10/spider/hdr"
)

// knownMethods is the verb allowlist from spec.md §4.1 step 1.
var knownMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true, "DELETE": true,
	"CONNECT": true, "OPTIONS": true, "TRACE": true, "PATCH": true,
}

// readLimitedLine reads a CRLF-terminated line, rejecting anything past
// limit bytes without it (a client drip-feeding headers one byte at a
// time cannot force unbounded buffering).
func readLimitedLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		line = append(line, chunk...)
		if len(line) > limit {
			return "", errLineTooLong
		}
		if !isPrefix {
			break
		}
	}
	return string(line), nil
}

var errLineTooLong = BadRequest("line exceeds configured limit")

// ReadRequest parses one HTTP/1.1 request off r, enforcing the
// hardening limits in cfg, per spec.md §4.1.
func ReadRequest(r *bufio.Reader, cfg Config) (*Request, error) {
	line, err := readLimitedLine(r, cfg.MaxRequestLineLength)
	if err != nil {
		if err == errLineTooLong {
			return nil, HeadersTooLarge("request line too long")
		}
		return nil, err
	}
	if line == "" {
		// RFC 2616 §4.1 tolerance: a leading blank line before the
		// request line is ignored by re-reading once.
		line, err = readLimitedLine(r, cfg.MaxRequestLineLength)
		if err != nil {
			return nil, err
		}
	}

	method, target, proto, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}
	if !knownMethods[method] {
		return nil, BadRequest("unknown method")
	}

	h, err := readHeaders(r, cfg)
	if err != nil {
		return nil, err
	}

	if hosts := h.Values(hdr.Host); len(hosts) > 1 {
		return nil, BadRequest("too many Host headers")
	}

	rawPath, rawQuery := parseTarget(target)
	req := &Request{
		Method:     method,
		URI:        URI{RawPath: rawPath, RawQuery: rawQuery, Authority: h.Get(hdr.Host)},
		Proto:      proto,
		Header:     h,
		Attributes: NewAttributes(),
	}

	body, err := framedBody(r, h, cfg, true)
	if err != nil {
		return nil, err
	}
	req.Body = body
	return req, nil
}

func parseRequestLine(line string) (method, target, proto string, err error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", "", BadRequest("malformed request line")
	}
	method, target, proto = parts[0], parts[1], parts[2]
	if proto != "HTTP/1.1" && proto != "HTTP/1.0" {
		return "", "", "", BadRequest("unsupported HTTP version")
	}
	return method, target, proto, nil
}

// readHeaders parses the header block up to the terminating blank line,
// enforcing per-field, count, and total-size caps. Obsolete line folding
// (a continuation line starting with SP/HT) is rejected, not tolerated,
// per the open-question decision recorded in SPEC_FULL.md §12.
func readHeaders(r *bufio.Reader, cfg Config) (hdr.Header, error) {
	h := hdr.New()
	total := 0
	count := 0
	for {
		line, err := readLimitedLine(r, cfg.MaxHeaderSize)
		if err != nil {
			if err == errLineTooLong {
				return nil, HeadersTooLarge("header field too long")
			}
			return nil, err
		}
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			return nil, BadRequest("obsolete header line folding is not supported")
		}

		count++
		if count > cfg.MaxHeaderCount {
			return nil, HeadersTooLarge("too many headers")
		}
		total += len(line) + 2
		if total > cfg.MaxTotalHeadersSize {
			return nil, HeadersTooLarge("total header size exceeded")
		}

		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			return nil, BadRequest("malformed header line")
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if !hdr.ValidHeaderFieldName(name) {
			return nil, BadRequest("invalid header name")
		}
		if !hdr.ValidHeaderFieldValue(value) {
			return nil, BadRequest("invalid header value")
		}
		h.Add(name, value)
	}
	return h, nil
}

// framedBody determines body framing per spec.md §4.1 step 3 and
// returns a reader bounded accordingly. isRequest distinguishes request
// framing (defaults to empty body) from response framing (caller
// supplies its own default elsewhere).
func framedBody(r *bufio.Reader, h hdr.Header, cfg Config, isRequest bool) (io.ReadCloser, error) {
	te := strings.ToLower(h.Get(hdr.TransferEncoding))
	if te != "" {
		if te != "chunked" {
			return nil, NotImplemented("unsupported transfer-encoding")
		}
		if !cfg.EnableChunkedEncoding {
			return nil, NotImplemented("chunked transfer-encoding is disabled")
		}
		return io.NopCloser(newChunkedReader(r, cfg.MaxRequestBodySize)), nil
	}

	if cl := h.Get(hdr.ContentLength); cl != "" {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return nil, BadRequest("invalid content-length")
		}
		if n > cfg.MaxRequestBodySize {
			return nil, PayloadTooLarge("request body exceeds configured limit")
		}
		return io.NopCloser(io.LimitReader(r, n)), nil
	}

	if isRequest {
		return NoBody, nil
	}
	return NoBody, nil
}
