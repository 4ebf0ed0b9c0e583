// Package extract turns the rendered text of a CRM record page into one
// typed, named record. Field lookups degrade to null values; only a page
// address that fails the entity's identifier pattern aborts an extraction.
package extract

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/capture-cli/internal/identity"
	"github.com/sells-group/capture-cli/internal/model"
	"github.com/sells-group/capture-cli/internal/normalize"
	"github.com/sells-group/capture-cli/internal/page"
	"github.com/sells-group/capture-cli/internal/textscan"
)

// ErrMissingIdentifier is returned when the page address does not match the
// entity's expected URL shape. Fatal for the attempt: no field work happens.
var ErrMissingIdentifier = eris.New("extract: record identifier not found in page URL")

// DefaultSettleDelay is the fixed wait before reading page text, tolerating
// asynchronous client-side rendering after navigation. A bounded delay, not
// a readiness poll.
const DefaultSettleDelay = 250 * time.Millisecond

// Result is one extraction outcome: the record plus any related partial
// records discovered on the same page (account pages list their contacts).
type Result struct {
	Record  model.Record          `json:"record"`
	Related []model.RelatedRecord `json:"related,omitempty"`
}

// Extractor runs per-entity extraction against a page source.
type Extractor struct {
	schemas map[model.ObjectType]*EntitySchema
	settle  time.Duration
	now     func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSettleDelay overrides the post-navigation settle wait.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Extractor) { e.settle = d }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New builds an Extractor from the embedded entity schemas.
func New(opts ...Option) (*Extractor, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	e := &Extractor{
		schemas: schemas,
		settle:  DefaultSettleDelay,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Schema returns the entity schema for an object type.
func (e *Extractor) Schema(t model.ObjectType) *EntitySchema {
	return e.schemas[t]
}

// Extract detects the object type from the page URL and extracts the record.
func (e *Extractor) Extract(ctx context.Context, src page.Source) (*Result, error) {
	t, _, ok := identity.Detect(src.URL())
	if !ok {
		return nil, eris.Wrapf(ErrMissingIdentifier, "url %s matches no entity", src.URL())
	}
	return e.ExtractAs(ctx, src, t)
}

// ExtractAs extracts a record of the given object type from the page.
func (e *Extractor) ExtractAs(ctx context.Context, src page.Source, t model.ObjectType) (*Result, error) {
	schema, ok := e.schemas[t]
	if !ok {
		return nil, eris.Errorf("extract: unknown object type %q", t)
	}

	id, ok := identity.FromURL(src.URL(), t)
	if !ok {
		return nil, eris.Wrapf(ErrMissingIdentifier, "url %s does not match %s pattern", src.URL(), t)
	}

	// Settle wait: the page renders asynchronously after navigation.
	if e.settle > 0 {
		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "extract: settle wait")
		case <-time.After(e.settle):
		}
	}

	raw, err := src.VisibleText(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "extract: read page text")
	}
	lines := textscan.Lineize(raw)

	pc := &pageContext{
		src:    src,
		typ:    t,
		id:     id,
		lines:  lines,
		schema: schema,
	}

	data := make(map[string]any, len(schema.Fields)+2)
	data["name"] = nullable(e.resolveName(ctx, pc))

	for _, f := range schema.Fields {
		raw, found := textscan.FindByLabel(lines, f.Label, textscan.Options{
			Partial:  f.Partial,
			Reserved: schema.reserved,
		})
		if !found {
			data[f.Key] = nil
			continue
		}
		data[f.Key] = normalizeField(f.Kind, raw)
	}

	result := &Result{Record: model.Record{
		ID:          id,
		ObjectType:  t,
		Data:        data,
		SourceURL:   src.URL(),
		LastUpdated: e.now().UTC(),
	}}

	// Entity-specific resolvers: stage/status disambiguation and related
	// record lists.
	e.finalize(ctx, pc, result)

	zap.L().Debug("extraction complete",
		zap.String("object", string(t)),
		zap.String("id", id),
		zap.Int("lines", len(lines)),
		zap.Int("related", len(result.Related)),
	)

	return result, nil
}

// pageContext carries per-attempt scan state between the shared pass and the
// entity-specific resolvers.
type pageContext struct {
	src    page.Source
	typ    model.ObjectType
	id     string
	lines  []string
	schema *EntitySchema
}

// resolveName is the shared 2-tier primary-name strategy: the entity header
// label followed by the next accepted line, else the primary-field slot.
func (e *Extractor) resolveName(ctx context.Context, pc *pageContext) (string, bool) {
	if name, ok := textscan.FindByLabel(pc.lines, pc.schema.Header, textscan.Options{
		Reserved: pc.schema.reserved,
	}); ok {
		return name, true
	}

	slot, err := pc.src.SlotText(ctx, page.SlotPrimaryField)
	if err != nil || strings.TrimSpace(slot) == "" {
		return "", false
	}
	return strings.TrimSpace(slot), true
}

// finalize dispatches to the entity-specific resolvers.
func (e *Extractor) finalize(ctx context.Context, pc *pageContext, res *Result) {
	switch pc.typ {
	case model.ObjectOpportunity:
		res.Record.Data["stage"] = nullable(resolveStage(ctx, pc))
	case model.ObjectLead:
		res.Record.Data["status"] = nullable(resolveLeadStatus(ctx, pc))
	case model.ObjectTask:
		res.Record.Data["status"] = nullable(resolveTaskStatus(ctx, pc))
	case model.ObjectAccount:
		res.Related = resolveRelatedContacts(pc, res.Record, e.now().UTC())
	}
}

func normalizeField(kind FieldKind, raw string) any {
	switch kind {
	case FieldAmount:
		v, ok := normalize.Amount(raw)
		if !ok {
			return nil
		}
		return v
	case FieldDate:
		return normalize.Date(raw)
	default:
		return raw
	}
}

func nullable(s string, ok bool) any {
	if !ok || s == "" {
		return nil
	}
	return s
}
