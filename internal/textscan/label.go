package textscan

import "strings"

// ReservedSet is the entity-specific vocabulary of captions and action-button
// labels that must never be accepted as a field value. Empty fields omit
// their value line entirely in the rendered text, which would otherwise make
// the next caption look like the value.
type ReservedSet struct {
	members map[string]struct{}
}

// NewReservedSet builds a case-insensitive set from the given labels.
func NewReservedSet(labels ...string) ReservedSet {
	m := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		m[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	return ReservedSet{members: m}
}

// Contains reports whether s is a reserved label, ignoring case.
func (rs ReservedSet) Contains(s string) bool {
	if rs.members == nil {
		return false
	}
	_, ok := rs.members[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Len returns the number of reserved labels in the set.
func (rs ReservedSet) Len() int { return len(rs.members) }

// Options controls a FindByLabel scan.
type Options struct {
	// Partial matches the label as a case-insensitive prefix instead of an
	// exact match. Needed for labels that carry a dynamic suffix, e.g.
	// "Phone (2)".
	Partial bool

	// Reserved is the set of captions that disqualify a candidate value.
	Reserved ReservedSet
}

// FindByLabel scans lines in order for the given label and returns the value
// on the immediately following line. The scan is first-match-only: the first
// occurrence of the label decides the outcome. A candidate equal to a
// reserved label is rejected and the whole lookup reports absent — later
// duplicates of the same label are never consulted, for a rejection or an
// accepted match alike. Returns ("", false) when the label never matches or
// its candidate was rejected.
func FindByLabel(lines []string, label string, opts Options) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(label))
	if want == "" {
		return "", false
	}

	for i := 0; i < len(lines)-1; i++ {
		got := strings.ToLower(lines[i])
		if opts.Partial {
			if !strings.HasPrefix(got, want) {
				continue
			}
		} else if got != want {
			continue
		}

		candidate := lines[i+1]
		if opts.Reserved.Contains(candidate) {
			return "", false
		}
		return candidate, true
	}
	return "", false
}

// ContainsExact reports whether any line equals needle exactly.
// Used by the vocabulary-scan tiers of the stage/status resolvers.
func ContainsExact(lines []string, needle string) bool {
	for _, l := range lines {
		if l == needle {
			return true
		}
	}
	return false
}
