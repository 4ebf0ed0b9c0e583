// Package page abstracts the rendered record page the executor reads.
// Extraction only ever sees visible text and a couple of named UI slots, so
// sources for live pages and saved fixtures are interchangeable.
package page

import "context"

// Slot names a well-known UI element whose text can be read directly when
// the line scan alone is not enough.
type Slot string

const (
	// SlotPrimaryField is the highlighted primary-field area at the top of a
	// record page; the fallback for the record's display name.
	SlotPrimaryField Slot = "primary-field"

	// SlotProgressPath is the chevron progress widget rendering an
	// opportunity's stage or a lead's status.
	SlotProgressPath Slot = "progress-path"
)

// Source is a rendered record page. VisibleText must return a fresh snapshot
// on every call: the page mutates without reload, and callers rely on
// re-reading rather than caching to avoid staleness.
type Source interface {
	// URL returns the page address the capture was invoked on.
	URL() string

	// VisibleText returns the page's full visible text.
	VisibleText(ctx context.Context) (string, error)

	// SlotText returns the text content of a named UI slot, or "" when the
	// slot is absent. A missing slot is not an error.
	SlotText(ctx context.Context, slot Slot) (string, error)
}

// Static is a fixed-content Source for fixtures and offline replay.
type Static struct {
	PageURL string
	Text    string
	Slots   map[Slot]string
}

// NewStatic builds a Static source from a URL and raw visible text.
func NewStatic(url, text string) *Static {
	return &Static{PageURL: url, Text: text, Slots: make(map[Slot]string)}
}

// WithSlot sets a slot's text and returns the source for chaining.
func (s *Static) WithSlot(slot Slot, text string) *Static {
	if s.Slots == nil {
		s.Slots = make(map[Slot]string)
	}
	s.Slots[slot] = text
	return s
}

func (s *Static) URL() string { return s.PageURL }

func (s *Static) VisibleText(_ context.Context) (string, error) {
	return s.Text, nil
}

func (s *Static) SlotText(_ context.Context, slot Slot) (string, error) {
	return s.Slots[slot], nil
}
