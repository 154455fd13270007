package pipeline

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Selector matches workspace paths against a /…/ pattern. Patterns with a
// ** or a path segment starting with * are doublestar globs. Any other
// pattern that compiles as a regular expression is searched for in the
// path, and the rest are globs too.
type Selector struct {
	Pattern string
	re      *regexp.Regexp
}

// NewSelector builds a selector. Surrounding slashes are optional.
func NewSelector(pattern string) (*Selector, error) {
	p := trimSlashes(pattern)
	if !isGlob(p) {
		if re, err := regexp.Compile(p); err == nil {
			return &Selector{Pattern: p, re: re}, nil
		}
	}
	if !doublestar.ValidatePattern(p) {
		return nil, fmt.Errorf("invalid selector %q: neither a regex nor a glob", pattern)
	}
	return &Selector{Pattern: p}, nil
}

// Match reports whether the path, or its base name for globs, matches.
func (s *Selector) Match(p string) bool {
	if s.re != nil {
		return s.re.MatchString(p)
	}
	if ok, _ := doublestar.Match(s.Pattern, p); ok {
		return true
	}
	ok, _ := doublestar.Match(s.Pattern, path.Base(p))
	return ok
}

// Filter returns the paths that match, keeping their order.
func (s *Selector) Filter(paths []string) []string {
	var out []string
	for _, p := range paths {
		if s.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// MatchPattern is a convenience wrapper for one-off matches. Invalid
// patterns match nothing.
func MatchPattern(pattern, p string) bool {
	s, err := NewSelector(pattern)
	if err != nil {
		return false
	}
	return s.Match(p)
}

// isGlob reports patterns that only read sensibly as globs, such as
// src/*.go, which as a regex would also match "srcXgo".
func isGlob(p string) bool {
	if strings.Contains(p, "**") {
		return true
	}
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, "*") {
			return true
		}
	}
	return false
}

func trimSlashes(p string) string {
	if len(p) >= 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") {
		return p[1 : len(p)-1]
	}
	return p
}
