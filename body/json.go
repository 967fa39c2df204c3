package body

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseJSON reads r (bounded by limits.MaxJSONSize) and decodes it into T
// via json-iterator/go, the external JSON module spec.md §4.5 defers to.
func ParseJSON[T any](r io.Reader, limits Limits) Result[T] {
	var zero T
	data, err := readLimited(r, limits.MaxJSONSize)
	if err != nil {
		if err == errTooLarge {
			return fail[T](BodyTooLarge, tooLargeErr("json body", limits.MaxJSONSize).Error())
		}
		return fail[T](ParseFailure, err.Error())
	}
	var v T
	if len(data) == 0 {
		return ok(zero)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return fail[T](ParseFailure, err.Error())
	}
	return ok(v)
}
