package hdr

// commonHeader interns the header names Spider itself sends or reads
// often, avoiding an allocation for the canonicalized string on the hot
// path (mirrors the teacher's commonHeader table).
var commonHeader = make(map[string]string)

func intern(names ...string) {
	for _, n := range names {
		commonHeader[n] = n
	}
}

func init() {
	intern(
		Accept, AcceptEncoding, AcceptLanguage, Authorization, CacheControl,
		Connection, ContentEncoding, ContentLength, ContentType, Cookie,
		Date, Etag, Expect, Host, IfModifiedSince, IfNoneMatch, LastModified,
		Location, Origin, Server, SetCookie, TransferEncoding, Upgrade,
		UserAgent, Vary, XForwardedFor, XRequestID, XXSRFToken, AccessControlRequestMethod,
		AccessControlRequestHeaders, AccessControlAllowOrigin, AccessControlAllowMethods,
		AccessControlAllowHeaders, AccessControlAllowCredentials, AccessControlMaxAge,
		AccessControlExposeHeaders, RetryAfter, SecWebSocketKey, SecWebSocketVersion,
		SecWebSocketAccept, SecWebSocketProtocol,
	)
}

// Well-known header names, in canonical form. Spider only canonicalizes
// through this table/algorithm, never via direct string comparison.
const (
	Accept                        = "Accept"
	AcceptEncoding                = "Accept-Encoding"
	AcceptLanguage                = "Accept-Language"
	Authorization                 = "Authorization"
	CacheControl                  = "Cache-Control"
	Connection                    = "Connection"
	ContentEncoding               = "Content-Encoding"
	ContentLength                 = "Content-Length"
	ContentType                   = "Content-Type"
	Cookie                        = "Cookie"
	Date                          = "Date"
	Etag                          = "Etag"
	Expect                        = "Expect"
	Host                          = "Host"
	IfModifiedSince               = "If-Modified-Since"
	IfNoneMatch                   = "If-None-Match"
	LastModified                  = "Last-Modified"
	Location                      = "Location"
	Origin                        = "Origin"
	Server                        = "Server"
	SetCookie                     = "Set-Cookie"
	TransferEncoding              = "Transfer-Encoding"
	Upgrade                       = "Upgrade"
	UserAgent                     = "User-Agent"
	Vary                          = "Vary"
	XForwardedFor                 = "X-Forwarded-For"
	XRequestID                    = "X-Request-Id"
	XXSRFToken                    = "X-Xsrf-Token"
	AccessControlRequestMethod    = "Access-Control-Request-Method"
	AccessControlRequestHeaders   = "Access-Control-Request-Headers"
	AccessControlAllowOrigin      = "Access-Control-Allow-Origin"
	AccessControlAllowMethods    = "Access-Control-Allow-Methods"
	AccessControlAllowHeaders    = "Access-Control-Allow-Headers"
	AccessControlAllowCredentials = "Access-Control-Allow-Credentials"
	AccessControlMaxAge           = "Access-Control-Max-Age"
	AccessControlExposeHeaders   = "Access-Control-Expose-Headers"
	RetryAfter                    = "Retry-After"
	SecWebSocketKey               = "Sec-Websocket-Key"
	SecWebSocketVersion            = "Sec-Websocket-Version"
	SecWebSocketAccept             = "Sec-Websocket-Accept"
	SecWebSocketProtocol           = "Sec-Websocket-Protocol"
)

// CanonicalHeaderKey returns the canonical form of a header name: the
// first letter and every letter following a hyphen are upper-cased, the
// rest lower-cased (e.g. "content-type" -> "Content-Type"). Names that
// contain a byte outside the HTTP token charset are returned unchanged.
func CanonicalHeaderKey(s string) string {
	if v, ok := commonHeader[s]; ok {
		return v
	}
	b := []byte(s)
	for _, c := range b {
		if !validHeaderFieldByte(c) {
			return s
		}
	}
	upper := true
	for i, c := range b {
		if upper && 'a' <= c && c <= 'z' {
			c -= toLower
		} else if !upper && 'A' <= c && c <= 'Z' {
			c += toLower
		}
		b[i] = c
		upper = c == '-'
	}
	out := string(b)
	if v, ok := commonHeader[out]; ok {
		return v
	}
	return out
}

// isTokenTable mirrors RFC 7230's token charset: tchar / DIGIT / ALPHA.
var isTokenTable = [127]bool{
	'0': true, '1': true, '2': true, '3': true, '4': true, '5': true, '6': true, '7': true,
	'8': true, '9': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true, 'h': true,
	'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true, 'o': true, 'p': true,
	'q': true, 'r': true, 's': true, 't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true, 'H': true,
	'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true, 'O': true, 'P': true,
	'Q': true, 'R': true, 'S': true, 'T': true, 'U': true, 'V': true, 'W': true, 'X': true,
	'Y': true, 'Z': true,
	'!': true, '#': true, '$': true, '%': true, '&': true, '\'': true, '*': true, '+': true,
	'-': true, '.': true, '^': true, '_': true, '`': true, '|': true, '~': true,
}

func validHeaderFieldByte(b byte) bool {
	return int(b) < len(isTokenTable) && isTokenTable[b]
}

// ValidHeaderFieldName reports whether s is a syntactically valid HTTP
// header field name (a non-empty token).
func ValidHeaderFieldName(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !validHeaderFieldByte(s[i]) {
			return false
		}
	}
	return true
}

// ValidHeaderFieldValue reports whether v is free of control bytes other
// than horizontal tab, as RFC 7230 requires for field-content.
func ValidHeaderFieldValue(v string) bool {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if (b < ' ' && b != '\t') || b == 0x7f {
			return false
		}
	}
	return true
}
