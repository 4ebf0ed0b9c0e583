// Package textscan implements line-oriented extraction over the rendered text
// of a record page. The source UI exposes no stable structural markup, but it
// consistently renders label/value pairs as adjacent lines in reading order;
// everything here trades on that adjacency.
package textscan

import "strings"

// Lineize splits raw visible text into an ordered sequence of trimmed,
// non-empty lines. The result must not be cached across capture attempts:
// the underlying page mutates without reload, so staleness is avoided by
// re-lineizing fresh text on every call rather than by locking.
func Lineize(raw string) []string {
	if raw == "" {
		return nil
	}
	var lines []string
	for _, seg := range strings.Split(raw, "\n") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		lines = append(lines, seg)
	}
	return lines
}
