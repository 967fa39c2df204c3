package body

import (
	"io"
	"unicode/utf8"
)

// ParseText reads r (bounded by limits.MaxTextSize) and decodes it as UTF-8.
func ParseText(r io.Reader, limits Limits) Result[string] {
	data, err := readLimited(r, limits.MaxTextSize)
	if err != nil {
		if err == errTooLarge {
			return fail[string](BodyTooLarge, tooLargeErr("text body", limits.MaxTextSize).Error())
		}
		return fail[string](ParseFailure, err.Error())
	}
	if !utf8.Valid(data) {
		return fail[string](ParseFailure, "body is not valid UTF-8")
	}
	return ok(string(data))
}
