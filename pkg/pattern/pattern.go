// Package pattern compiles route path templates such as
// "/application/:user/status/:id" into matchers that extract parameters
// from concrete paths and generate concrete paths from parameters.
//
// Templates are "/"-delimited. A segment starting with ":" is dynamic and
// matches any single non-empty segment, captured under the name that
// follows the colon. Every other segment is static and must match exactly
// (case-sensitive). There are no optional segments, wildcards or prefix
// matches: a path matches only if it has exactly as many segments as the
// template.
package pattern

import (
	"strings"

	rterrors "github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/routepath"
)

var (
	// ErrInvalidPattern is returned by Compile for malformed templates.
	ErrInvalidPattern = rterrors.New(rterrors.CodeInvalidPattern)

	// ErrMissingParam is returned by Generate when a dynamic segment has
	// no value.
	ErrMissingParam = rterrors.New(rterrors.CodeMissingParam)
)

// segment is one compiled template segment. For dynamic segments value
// holds the parameter name.
type segment struct {
	value   string
	dynamic bool
}

// Pattern is a compiled path template.
type Pattern struct {
	path     string
	segments []segment
	names    []string
}

// Compile parses an absolute path template. The template is normalized to
// a single leading slash, so "a/:b" and "/a/:b" compile to the same
// pattern.
func Compile(path string) (*Pattern, error) {
	path = "/" + strings.TrimPrefix(path, "/")
	p := &Pattern{path: path}

	seen := make(map[string]bool)
	for _, part := range routepath.Segments(path) {
		if !strings.HasPrefix(part, ":") {
			p.segments = append(p.segments, segment{value: part})
			continue
		}

		name := part[1:]
		if name == "" {
			return nil, rterrors.New(rterrors.CodeInvalidPattern).
				WithDetailf("empty parameter name in %q", path)
		}
		if seen[name] {
			return nil, rterrors.New(rterrors.CodeInvalidPattern).
				WithDetailf("parameter %q appears twice in %q", name, path)
		}
		seen[name] = true
		p.segments = append(p.segments, segment{value: name, dynamic: true})
		p.names = append(p.names, name)
	}

	return p, nil
}

// MustCompile is like Compile but panics if the template is invalid.
func MustCompile(path string) *Pattern {
	p, err := Compile(path)
	if err != nil {
		panic("pattern: Compile(" + path + "): " + err.Error())
	}
	return p
}

// Path returns the normalized template.
func (p *Pattern) Path() string {
	return p.path
}

// String implements fmt.Stringer.
func (p *Pattern) String() string {
	return p.path
}

// ParamNames returns the dynamic segment names in template order.
func (p *Pattern) ParamNames() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// NumParams returns the number of dynamic segments.
func (p *Pattern) NumParams() int {
	return len(p.names)
}

// Match tests path (without query string) against the pattern and returns
// the percent-decoded dynamic segments. The returned map is never nil on a
// match.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	parts := routepath.Segments(path)
	if len(parts) != len(p.segments) {
		return nil, false
	}

	params := make(map[string]string, len(p.names))
	for i, seg := range p.segments {
		part := parts[i]
		if !seg.dynamic {
			if part != seg.value {
				return nil, false
			}
			continue
		}
		if part == "" {
			return nil, false
		}
		params[seg.value] = routepath.DecodeSegment(part)
	}
	return params, true
}

// Generate substitutes params into the template, percent-encoding each
// value. It fails with ErrMissingParam when a dynamic segment has no
// value or an empty one.
func (p *Pattern) Generate(params map[string]string) (string, error) {
	if len(p.segments) == 0 {
		return "/", nil
	}

	var b strings.Builder
	b.Grow(len(p.path))
	for _, seg := range p.segments {
		b.WriteByte('/')
		if !seg.dynamic {
			b.WriteString(seg.value)
			continue
		}
		value, ok := params[seg.value]
		if !ok || value == "" {
			return "", rterrors.New(rterrors.CodeMissingParam).
				WithDetailf("%q for %s", seg.value, p.path)
		}
		b.WriteString(routepath.EscapeComponent(value))
	}
	return b.String(), nil
}
