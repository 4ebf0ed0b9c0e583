// Package normalize converts raw extracted field strings into typed values.
// Normalizers are pure functions; a failed parse is an absent value, never an
// error.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Amount parses a currency-ish string into a float64 by stripping every
// character except digits, '.', and '-'. No locale or currency-symbol logic;
// "$50,000.00" becomes 50000. Returns false when nothing parseable remains.
func Amount(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var mdyRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// Date re-renders an M/D/YYYY date as zero-padded YYYY-MM-DD. Strings not
// matching that shape pass through unchanged — callers must tolerate
// non-ISO dates in record data.
func Date(raw string) string {
	m := mdyRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return raw
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
}
