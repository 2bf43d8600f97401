package update

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Part is one dot-separated component of a version string.
// A part that is not made of decimal digits is incomparable: it is neither
// greater nor less than any other part.
type Part struct {
	digits     string // leading zeros trimmed; "" means zero
	comparable bool
}

// Version represents a parsed dot-separated version.
// Parsing never fails; malformed components become incomparable parts.
type Version struct {
	Parts []Part
	Raw   string
}

// ParseVersion parses a version string such as "1.2.3", "v1.2.3" or "1.2.3.4".
// A single leading marker letter (conventionally 'v') is stripped. A "-label"
// suffix is not: it stays attached to the last component, which then becomes
// incomparable. Use SplitTag first when suffixes should be ignored.
func ParseVersion(s string) Version {
	clean := stripMarker(s)
	tokens := strings.Split(clean, ".")
	parts := make([]Part, len(tokens))
	for i, tok := range tokens {
		parts[i] = parsePart(tok)
	}
	return Version{Parts: parts, Raw: s}
}

// String returns the version as it was given.
func (v Version) String() string {
	return v.Raw
}

// Compare compares two versions component by component, most significant first.
// The shorter version is padded with zero components. Incomparable components
// are skipped. Returns:
//
//	-1 if v < other
//	 0 if v == other (or no comparable component differs)
//	 1 if v > other
func (v Version) Compare(other Version) int {
	n := len(v.Parts)
	if len(other.Parts) > n {
		n = len(other.Parts)
	}
	for i := 0; i < n; i++ {
		a := partAt(v.Parts, i)
		b := partAt(other.Parts, i)
		if !a.comparable || !b.comparable {
			continue
		}
		if c := compareDigits(a.digits, b.digits); c != 0 {
			return c
		}
	}
	return 0
}

// GreaterThan returns true if v > other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// LessThan returns true if v < other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// SemanticVersionCompare reports whether version a is strictly newer than b.
// Equal versions are not newer. Suffixes are not stripped here: "1.2.4-beta"
// has an incomparable last component, so it is not newer than "1.2.3".
func SemanticVersionCompare(a, b string) bool {
	return ParseVersion(a).GreaterThan(ParseVersion(b))
}

// SplitTag splits a release tag on its first '-' into the comparable version
// and the pre-release label. The label is empty when the tag has no '-'.
func SplitTag(tag string) (version, label string) {
	version, label, _ = strings.Cut(tag, "-")
	return version, label
}

func stripMarker(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size > 0 && unicode.IsLetter(r) {
		return s[size:]
	}
	return s
}

func parsePart(tok string) Part {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return Part{comparable: true}
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return Part{}
		}
	}
	return Part{digits: strings.TrimLeft(tok, "0"), comparable: true}
}

func partAt(parts []Part, i int) Part {
	if i < len(parts) {
		return parts[i]
	}
	return Part{comparable: true}
}

// compareDigits compares two decimal strings without leading zeros, so
// arbitrarily large components never overflow.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
