// Package sentinel detects the application-level completion marker that an
// upstream provider (or a cooperating layer) appends to generated text, so
// callers can tell a logically finished answer from a stream that merely
// closed.
package sentinel

import (
	"strings"
	"unicode"
)

// Marker is the default completion marker. Matching is exact and
// case-sensitive; trailing whitespace after it is allowed.
const Marker = "<END>"

// Check is the outcome of inspecting assembled text.
type Check struct {
	// Satisfied is true when the text ended with the marker.
	Satisfied bool

	// SanitizedContent is the marker-stripped, right-trimmed text when
	// Satisfied, the original text untouched otherwise, and nil when the
	// input was nil.
	SanitizedContent *string
}

// Text returns SanitizedContent, or "" when it is nil.
func (c Check) Text() string {
	if c.SanitizedContent == nil {
		return ""
	}
	return *c.SanitizedContent
}

// Sentinel inspects text for a specific completion marker.
type Sentinel struct {
	marker string
}

// New returns a Sentinel for marker. An empty marker selects Marker.
func New(marker string) *Sentinel {
	if marker == "" {
		marker = Marker
	}
	return &Sentinel{marker: marker}
}

// Marker returns the literal this Sentinel looks for.
func (s *Sentinel) Marker() string {
	return s.marker
}

// Inspect checks whether content, ignoring trailing whitespace, ends with the
// marker. On a match the marker and the whitespace before it are removed.
// Without a match content is returned exactly as given, untrimmed.
func (s *Sentinel) Inspect(content *string) Check {
	if content == nil {
		return Check{}
	}

	trimmed := strings.TrimRightFunc(*content, unicode.IsSpace)
	if !strings.HasSuffix(trimmed, s.marker) {
		original := *content
		return Check{SanitizedContent: &original}
	}

	stripped := strings.TrimRightFunc(strings.TrimSuffix(trimmed, s.marker), unicode.IsSpace)
	return Check{Satisfied: true, SanitizedContent: &stripped}
}

// InspectString is Inspect for a non-nil string.
func (s *Sentinel) InspectString(content string) Check {
	return s.Inspect(&content)
}

var defaultSentinel = New(Marker)

// Inspect checks content against the default Marker.
func Inspect(content *string) Check {
	return defaultSentinel.Inspect(content)
}

// InspectString checks content against the default Marker.
func InspectString(content string) Check {
	return defaultSentinel.Inspect(&content)
}
