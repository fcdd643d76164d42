// Package version implements ordering over dotted version strings as
// reported by tools and package managers. Comparison is component-wise,
// numeric where possible, so "0.9" sorts before "0.60".
package version

import (
	"strconv"
	"strings"
)

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

// String returns a readable name for the ordering.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// Compare imposes a total order over version strings. The empty string
// means "no version" and sorts below every non-empty version, so a missing
// tool always needs provisioning. Strings are split on '.' and '-' into
// segments compared as integers when both sides parse, else as plain
// strings. A missing trailing segment counts as zero, so "1.2" and "1.2.0"
// are equal.
func Compare(a, b string) Ordering {
	if a == b {
		return Equal
	}
	if a == "" {
		return Less
	}
	if b == "" {
		return Greater
	}

	segsA := split(a)
	segsB := split(b)

	n := len(segsA)
	if len(segsB) > n {
		n = len(segsB)
	}

	for i := 0; i < n; i++ {
		segA := "0"
		segB := "0"
		if i < len(segsA) {
			segA = segsA[i]
		}
		if i < len(segsB) {
			segB = segsB[i]
		}

		if ord := compareSegment(segA, segB); ord != Equal {
			return ord
		}
	}
	return Equal
}

// AtLeast reports whether v satisfies the given minimum. A missing v never
// does, a missing minimum is always satisfied.
func AtLeast(v, minimum string) bool {
	return Compare(v, minimum) != Less
}

func split(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})
}

func compareSegment(a, b string) Ordering {
	numA, restA, okA := leadingInt(a)
	numB, restB, okB := leadingInt(b)

	// Segments with numeric prefixes ("60", "60rc1") compare numerically
	// first, with the alphanumeric suffix breaking ties.
	if okA && okB {
		switch {
		case numA < numB:
			return Less
		case numA > numB:
			return Greater
		}
		a, b = restA, restB
	}

	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func leadingInt(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}
