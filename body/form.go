package body

import (
	"errors"
	"io"
	"net/url"
)

var errTooLarge = errors.New("body: limit exceeded")

// Form is the parsed URL-encoded body: a last-value map plus the full
// multi-value map for callers that need duplicates (spec.md §4.5).
type Form struct {
	Values url.Values
}

// Get returns the last value for key, or "".
func (f Form) Get(key string) string {
	vs := f.Values[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

// ParseForm reads r (bounded by limits.MaxFormSize) and decodes it as
// application/x-www-form-urlencoded.
func ParseForm(r io.Reader, limits Limits) Result[Form] {
	data, err := readLimited(r, limits.MaxFormSize)
	if err != nil {
		if err == errTooLarge {
			return fail[Form](BodyTooLarge, tooLargeErr("form body", limits.MaxFormSize).Error())
		}
		return fail[Form](ParseFailure, err.Error())
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return fail[Form](ParseFailure, err.Error())
	}
	return ok(Form{Values: values})
}

// readLimited reads at most limit+1 bytes from r, returning errTooLarge
// if more than limit bytes were present.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	lr := io.LimitReader(r, limit+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}
