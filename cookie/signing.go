package cookie

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sign returns "value.signature" where signature is
// base64(HMAC-SHA-256(value, secret)), per spec.md §3.
func Sign(value string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(value))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return value + "." + sig
}

// Verify checks a signed cookie value against secret. A mismatched or
// malformed signature, or a signature produced under a different
// secret, all report ok=false — the three cases spec.md §8's testable
// property distinguishes, collapsed into one safe outcome.
func Verify(signed string, secret []byte) (value string, ok bool) {
	dot := strings.LastIndexByte(signed, '.')
	if dot < 0 {
		return "", false
	}
	value, sig := signed[:dot], signed[dot+1:]
	want := Sign(value, secret)
	wantSig := want[strings.LastIndexByte(want, '.')+1:]
	if subtle.ConstantTimeCompare([]byte(sig), []byte(wantSig)) != 1 {
		return "", false
	}
	return value, true
}

// NewSessionID returns a cryptographically random identifier with at
// least 128 bits of entropy, as spec.md §3 requires for Session.id.
// UUIDv4 is generated from crypto/rand under the hood (google/uuid),
// giving 122 bits of true randomness; Spider appends 8 further bytes
// (64 bits) from crypto/rand to clear the ">=128 bits" bar with margin.
func NewSessionID() (string, error) {
	a, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("cookie: generating session id: %w", err)
	}
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("cookie: generating session id: %w", err)
	}
	return a.String() + "-" + base64.RawURLEncoding.EncodeToString(b), nil
}
