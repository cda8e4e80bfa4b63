// Package pattern compiles dotted query strings such as "System.Web.Mvc.*"
// into a form the query engine can test candidate symbols against.
package pattern

import (
	"fmt"
	"strings"

	"github.com/oxhq/csgraph/internal/core"
)

// Wildcard is the single-segment wildcard token.
const Wildcard = "*"

// part is one compiled segment: either a literal or the wildcard.
type part struct {
	literal  string
	wildcard bool
}

// Pattern is a compiled dotted pattern ready for matching.
type Pattern struct {
	raw   string
	parts []part
}

// Compile splits pattern on literal '.' and validates each segment.
// Fails with core.ErrInvalidPattern if pattern is empty or any segment is
// empty (consecutive dots, or a leading/trailing dot).
func Compile(p string) (*Pattern, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: empty pattern", core.ErrInvalidPattern)
	}

	segments := strings.Split(p, ".")
	parts := make([]part, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", core.ErrInvalidPattern, p)
		}
		parts = append(parts, part{literal: seg, wildcard: seg == Wildcard})
	}

	return &Pattern{raw: p, parts: parts}, nil
}

// String returns the original, uncompiled pattern text.
func (c *Pattern) String() string { return c.raw }

// matchSegments compares compiled parts against dotted segments one by one.
// Segment counts must match exactly; there is no partial-wildcard matching
// within a single segment.
func matchSegments(parts []part, segments []string) bool {
	if len(parts) != len(segments) {
		return false
	}
	for i, p := range parts {
		if p.wildcard {
			continue
		}
		if p.literal != segments[i] {
			return false
		}
	}
	return true
}

func splitNonEmpty(dotted string) []string {
	if dotted == "" {
		return nil
	}
	return strings.Split(dotted, ".")
}

// MatchNamespace matches a dotted candidate against every compiled part
// except the last. The candidate must have exactly len(parts)-1 segments.
func (c *Pattern) MatchNamespace(dotted string) bool {
	if len(c.parts) < 1 {
		return false
	}
	prefix := c.parts[:len(c.parts)-1]
	return matchSegments(prefix, splitNonEmpty(dotted))
}

// MatchSymbol matches the single final pattern part against a bare symbol.
func (c *Pattern) MatchSymbol(s string) bool {
	if len(c.parts) == 0 {
		return false
	}
	last := c.parts[len(c.parts)-1]
	if last.wildcard {
		return true
	}
	return last.literal == s
}

// PartialNamespace reports whether the pattern's first k parts match
// dotted's first k segments, where k = len(segments). Used to early-exit
// traversal before the full namespace is known.
func (c *Pattern) PartialNamespace(dotted string) bool {
	segments := splitNonEmpty(dotted)
	if len(segments) == 0 {
		return true
	}
	if len(segments) > len(c.parts) {
		return false
	}
	return matchSegments(c.parts[:len(segments)], segments)
}
