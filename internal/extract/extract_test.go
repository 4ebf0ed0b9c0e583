package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/capture-cli/internal/model"
	"github.com/sells-group/capture-cli/internal/page"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(WithSettleDelay(0))
	require.NoError(t, err)
	return e
}

const oppURL = "https://org.lightning.force.com/lightning/r/Opportunity/006ABC000012xYz/view"

func TestExtract_Opportunity(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	text := strings.Join([]string{
		"Opportunity",
		"Acme Deal",
		"Amount",
		"$50,000",
		"Close Date",
		"3/15/2026",
		"Opportunity Owner",
		"J. Smith",
	}, "\n")

	res, err := e.Extract(context.Background(), page.NewStatic(oppURL, text))
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, "006ABC000012xYz", rec.ID)
	assert.Equal(t, model.ObjectOpportunity, rec.ObjectType)
	assert.Equal(t, oppURL, rec.SourceURL)
	assert.False(t, rec.LastUpdated.IsZero())

	assert.Equal(t, map[string]any{
		"name":      "Acme Deal",
		"amount":    float64(50000),
		"closeDate": "2026-03-15",
		"owner":     "J. Smith",
		"account":   nil,
		"stage":     nil,
	}, rec.Data)
	assert.Empty(t, res.Related)
}

func TestExtract_MissingIdentifier(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	src := page.NewStatic("https://example.com/not/a/record", "Opportunity\nAcme")
	_, err := e.Extract(context.Background(), src)
	require.ErrorIs(t, err, ErrMissingIdentifier)

	// Typed extraction against the wrong entity pattern fails the same way.
	_, err = e.ExtractAs(context.Background(), page.NewStatic(oppURL, ""), model.ObjectContact)
	require.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestExtract_PartialFieldsAreSuccess(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	// Only the name renders; every other lookup degrades to null.
	res, err := e.Extract(context.Background(), page.NewStatic(oppURL, "Opportunity\nBare Deal"))
	require.NoError(t, err)

	assert.Equal(t, "Bare Deal", res.Record.Data["name"])
	for _, key := range []string{"amount", "closeDate", "owner", "account", "stage"} {
		assert.Nil(t, res.Record.Data[key], key)
	}
}

func TestExtract_NameFallsBackToPrimaryFieldSlot(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	src := page.NewStatic(oppURL, "Amount\n$1,000").
		WithSlot(page.SlotPrimaryField, "  Slot Deal  ")

	res, err := e.Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "Slot Deal", res.Record.Data["name"])
}

func TestExtract_StageResolverTiers(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	t.Run("exact vocabulary line", func(t *testing.T) {
		t.Parallel()
		src := page.NewStatic(oppURL, "Opportunity\nAcme\nNegotiation/Review")
		res, err := e.Extract(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, "Negotiation/Review", res.Record.Data["stage"])
	})

	t.Run("stage label validated against vocabulary", func(t *testing.T) {
		t.Parallel()
		src := page.NewStatic(oppURL, "Opportunity\nAcme\nStage\nclosed won")
		res, err := e.Extract(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, "Closed Won", res.Record.Data["stage"])
	})

	t.Run("stage label with junk value yields null", func(t *testing.T) {
		t.Parallel()
		src := page.NewStatic(oppURL, "Opportunity\nAcme\nStage\nBananas")
		res, err := e.Extract(context.Background(), src)
		require.NoError(t, err)
		assert.Nil(t, res.Record.Data["stage"])
	})

	t.Run("progress path slot fallback", func(t *testing.T) {
		t.Parallel()
		src := page.NewStatic(oppURL, "Opportunity\nAcme").
			WithSlot(page.SlotProgressPath, "Qualification Needs Analysis Prospecting")
		res, err := e.Extract(context.Background(), src)
		require.NoError(t, err)
		// First vocabulary member found in the slot text wins.
		assert.Equal(t, "Prospecting", res.Record.Data["stage"])
	})

	t.Run("task status vocabulary never leaks into stage", func(t *testing.T) {
		t.Parallel()
		src := page.NewStatic(oppURL, "Opportunity\nAcme\nIn Progress")
		res, err := e.Extract(context.Background(), src)
		require.NoError(t, err)
		assert.Nil(t, res.Record.Data["stage"])
	})
}

func TestExtract_Lead(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	url := "https://org.lightning.force.com/lightning/r/Lead/00QABC000012xYz/view"
	text := strings.Join([]string{
		"Lead",
		"Pat Jones",
		"Company",
		"Jones Construction",
		"Phone (2)",
		"555-0100",
		"Working - Contacted",
	}, "\n")

	res, err := e.Extract(context.Background(), page.NewStatic(url, text))
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, model.ObjectLead, rec.ObjectType)
	assert.Equal(t, "Pat Jones", rec.Data["name"])
	assert.Equal(t, "Jones Construction", rec.Data["company"])
	assert.Equal(t, "555-0100", rec.Data["phone"], "phone label carries a count suffix")
	assert.Equal(t, "Working - Contacted", rec.Data["status"])
	assert.Nil(t, rec.Data["email"])
}

func TestExtract_LeadStatusDisjointFromStages(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	// An opportunity stage name on a lead page must not register as status.
	url := "https://org.lightning.force.com/lightning/r/Lead/00QABC000012xYz/view"
	res, err := e.Extract(context.Background(), page.NewStatic(url, "Lead\nPat\nClosed Won"))
	require.NoError(t, err)
	assert.Nil(t, res.Record.Data["status"])
}

func TestExtract_Contact(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	url := "https://org.lightning.force.com/lightning/r/Contact/003ABC000012xYz/view"
	text := strings.Join([]string{
		"Contact",
		"Dana Lee",
		"Account Name",
		"Acme Corp",
		"Title",
		"VP Operations",
		"Email",
		"dana@acme.example",
	}, "\n")

	res, err := e.Extract(context.Background(), page.NewStatic(url, text))
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, model.ObjectContact, rec.ObjectType)
	assert.Equal(t, "Dana Lee", rec.Data["name"])
	assert.Equal(t, "Acme Corp", rec.Data["account"])
	assert.Equal(t, "VP Operations", rec.Data["title"])
	assert.Equal(t, "dana@acme.example", rec.Data["email"])
	assert.Empty(t, res.Related)
}

func TestExtract_AccountWithRelatedContacts(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	url := "https://org.lightning.force.com/lightning/r/Account/001ABC000012xYz/view"
	text := strings.Join([]string{
		"Account",
		"Acme Corp",
		"Industry",
		"Manufacturing",
		"Contacts (2)",
		"Dana Lee",
		"Pat Jones",
		"Opportunities",
		"Acme Deal",
	}, "\n")

	res, err := e.Extract(context.Background(), page.NewStatic(url, text))
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, model.ObjectAccount, rec.ObjectType)
	assert.Equal(t, "Acme Corp", rec.Data["name"])
	assert.Equal(t, "Manufacturing", rec.Data["industry"])

	require.Len(t, res.Related, 2)
	for i, wantName := range []string{"Dana Lee", "Pat Jones"} {
		rel := res.Related[i]
		assert.Equal(t, model.ObjectContact, rel.ObjectType)
		assert.Empty(t, rel.ID, "related contacts have no ID until visited")
		assert.Equal(t, "001ABC000012xYz", rel.ParentID)
		assert.Equal(t, wantName, rel.Data["name"])
		assert.Equal(t, "Acme Corp", rel.Data["account"])
	}
}

func TestExtract_Task(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	url := "https://org.lightning.force.com/lightning/r/Task/00TABC000012xYz/view"
	text := strings.Join([]string{
		"Task",
		"Follow up call",
		"Subject",
		"Follow up call",
		"Due Date",
		"4/1/2026",
		"Status",
		"Not Started",
		"Priority",
		"High",
	}, "\n")

	res, err := e.Extract(context.Background(), page.NewStatic(url, text))
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, model.ObjectTask, rec.ObjectType)
	assert.Equal(t, "Follow up call", rec.Data["subject"])
	assert.Equal(t, "2026-04-01", rec.Data["dueDate"])
	assert.Equal(t, "Not Started", rec.Data["status"])
	assert.Equal(t, "High", rec.Data["priority"])
}

func TestExtract_SettleWaitHonorsContext(t *testing.T) {
	t.Parallel()
	e, err := New(WithSettleDelay(time.Minute))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Extract(ctx, page.NewStatic(oppURL, "Opportunity\nAcme"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_ReservedLabelNotSwallowedAsValue(t *testing.T) {
	t.Parallel()
	e := newTestExtractor(t)

	// Amount is empty on the page: its value line is omitted, so the next
	// caption follows it directly.
	text := strings.Join([]string{
		"Opportunity",
		"Acme Deal",
		"Amount",
		"Close Date",
		"3/15/2026",
	}, "\n")

	res, err := e.Extract(context.Background(), page.NewStatic(oppURL, text))
	require.NoError(t, err)
	assert.Nil(t, res.Record.Data["amount"])
	assert.Equal(t, "2026-03-15", res.Record.Data["closeDate"])
}

func TestLoadSchemas(t *testing.T) {
	t.Parallel()
	schemas, err := loadSchemas()
	require.NoError(t, err)

	for _, typ := range model.ObjectTypes {
		s := schemas[typ]
		require.NotNil(t, s, string(typ))
		assert.NotEmpty(t, s.Header, string(typ))
		assert.Greater(t, s.ReservedSet().Len(), 0, string(typ))
		for _, f := range s.Fields {
			assert.NotEmpty(t, f.Key)
			assert.NotEmpty(t, f.Label)
			assert.NotEmpty(t, f.Kind)
		}
	}

	require.NotNil(t, schemas[model.ObjectAccount].Related)
	assert.Equal(t, model.ObjectContact, schemas[model.ObjectAccount].Related.Object)
}
