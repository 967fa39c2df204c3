// Package hdr implements a case-insensitive, multi-valued HTTP header map.
//
// Adapted from the teacher's net/http fork: comparisons always go through
// CanonicalHeaderKey, never direct string equality, so the map behaves
// correctly regardless of how a peer cased a header name on the wire.
package hdr

import (
	"io"
	"sort"
	"strings"
)

const toLower = 'a' - 'A'

// Header represents the key-value pairs in an HTTP header block. Keys
// are stored in canonical form and may carry more than one value
// (e.g. repeated Set-Cookie).
type Header map[string][]string

// New returns an empty Header ready for use.
func New() Header { return make(Header) }

// Add appends value to the list of values for key, canonicalizing key.
func (h Header) Add(key, value string) {
	h[CanonicalHeaderKey(key)] = append(h[CanonicalHeaderKey(key)], value)
}

// Set replaces the values for key with a single value.
func (h Header) Set(key, value string) {
	h[CanonicalHeaderKey(key)] = []string{value}
}

// Get returns the first value associated with key, or "".
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	v := h[CanonicalHeaderKey(key)]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Values returns all values associated with key, preserving order.
func (h Header) Values(key string) []string {
	if h == nil {
		return nil
	}
	return h[CanonicalHeaderKey(key)]
}

// Del removes all values associated with key.
func (h Header) Del(key string) {
	delete(h, CanonicalHeaderKey(key))
}

// Has reports whether key has at least one value.
func (h Header) Has(key string) bool {
	return len(h[CanonicalHeaderKey(key)]) > 0
}

// Clone returns a deep copy of h.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	h2 := make(Header, len(h))
	for k, vv := range h {
		vv2 := make([]string, len(vv))
		copy(vv2, vv)
		h2[k] = vv2
	}
	return h2
}

type keyValues struct {
	key    string
	values []string
}

type headerSorter struct{ kvs []keyValues }

func (s *headerSorter) Len() int           { return len(s.kvs) }
func (s *headerSorter) Swap(i, j int)      { s.kvs[i], s.kvs[j] = s.kvs[j], s.kvs[i] }
func (s *headerSorter) Less(i, j int) bool { return s.kvs[i].key < s.kvs[j].key }

var headerNewlineToSpace = strings.NewReplacer("\n", " ", "\r", " ")

// WriteSubset writes the header in wire format (Name: Value\r\n per
// value, sorted by key for determinism), skipping keys in exclude.
func (h Header) WriteSubset(w io.Writer, exclude map[string]bool) error {
	kvs := make([]keyValues, 0, len(h))
	for k, vv := range h {
		if exclude[k] {
			continue
		}
		kvs = append(kvs, keyValues{k, vv})
	}
	sort.Sort(&headerSorter{kvs})
	for _, kv := range kvs {
		for _, v := range kv.values {
			v = headerNewlineToSpace.Replace(v)
			v = strings.TrimSpace(v)
			if _, err := io.WriteString(w, kv.key); err != nil {
				return err
			}
			if _, err := io.WriteString(w, ": "); err != nil {
				return err
			}
			if _, err := io.WriteString(w, v); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\r\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Write writes every header in wire format.
func (h Header) Write(w io.Writer) error { return h.WriteSubset(w, nil) }
