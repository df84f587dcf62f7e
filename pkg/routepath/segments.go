// Package routepath holds the path helpers shared by the pattern compiler,
// the query codec and the router.
package routepath

import (
	"net/url"
	"strings"
)

// Join builds an absolute path from templates, skipping empty ones and
// trimming slashes around each: Join("/application", "", ":id/") is
// "/application/:id". Join() is "/".
func Join(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(p)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Segments splits an absolute path into its "/"-delimited segments. The
// leading slash is dropped, so "/" has no segments while "/a/" has two
// ("a" and ""). Empty segments are kept so that matching stays exact.
func Segments(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// SplitPathAndQuery splits input at the first "?". The query is returned
// without the "?".
func SplitPathAndQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// TrimFragment turns a fragment URL ("#application/42") into a rooted path
// ("/application/42"). Other inputs only get a leading slash if missing.
func TrimFragment(input string) string {
	input = strings.TrimPrefix(input, "#")
	if !strings.HasPrefix(input, "/") {
		input = "/" + input
	}
	return input
}

// DecodeSegment percent-decodes a single path segment. Segments with
// malformed escapes are returned unchanged.
func DecodeSegment(segment string) string {
	if !strings.Contains(segment, "%") {
		return segment
	}
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return decoded
}

// EscapeComponent percent-encodes s the way encodeURIComponent does: every
// byte except ASCII letters, digits and -_.!~*'() is escaped, so spaces
// become %20 and "/" becomes %2F.
func EscapeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

// UnescapeComponent decodes a query key or value: "+" is a space and %XX
// escapes are decoded. Malformed escapes leave s unchanged apart from "+".
func UnescapeComponent(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	return DecodeSegment(s)
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
