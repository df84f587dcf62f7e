package routepath

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Reasons a path is refused by Clean. The returned error wraps one of them.
var (
	ErrBackslash = errors.New("backslash in path")
	ErrNulByte   = errors.New("NUL byte in path")
	ErrBadEscape = errors.New("malformed percent escape")
	ErrAboveRoot = errors.New(`".." climbs above the root`)
)

// Clean rewrites a rooted path into the form matchers compare against:
// "/application//messages/" and "/application/./x/../messages" both
// become "/application/messages". A query string after the first "?" is
// carried over untouched.
//
// Paths that could address something other than what they spell are
// refused instead of repaired.
func Clean(input string) (string, error) {
	path, rawQuery, _ := strings.Cut(input, "?")
	if err := vet(path); err != nil {
		return "", fmt.Errorf("clean %q: %w", path, err)
	}

	kept := make([]string, 0, strings.Count(path, "/"))
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." {
			continue
		}
		if seg != ".." {
			kept = append(kept, seg)
			continue
		}
		if len(kept) == 0 {
			return "", fmt.Errorf("clean %q: %w", path, ErrAboveRoot)
		}
		kept = kept[:len(kept)-1]
	}

	out := "/" + strings.Join(kept, "/")
	if rawQuery != "" {
		out += "?" + rawQuery
	}
	return out, nil
}

func vet(path string) error {
	if strings.IndexByte(path, '\\') >= 0 {
		return ErrBackslash
	}
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return ErrBadEscape
	}
	if strings.IndexByte(decoded, 0) >= 0 {
		return ErrNulByte
	}
	return nil
}
