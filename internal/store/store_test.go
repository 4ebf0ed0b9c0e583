package store

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/capture-cli/internal/model"
)

// memStore keeps the snapshot in memory for exercising the Apply path.
type memStore struct {
	snap    *model.Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) (*model.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		m.snap = model.NewSnapshot()
	}
	return m.snap, nil
}

func (m *memStore) Save(_ context.Context, snap *model.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	m.saves++
	return nil
}

func (m *memStore) Close() error { return nil }

func TestApply(t *testing.T) {
	t.Parallel()

	ms := &memStore{}
	rec := oppRecord("006AAA000011aBc", "Acme Deal")

	res, err := Apply(context.Background(), ms, rec, nil)
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Inserted: 1}, res)
	assert.Equal(t, 1, ms.saves)
	assert.Equal(t, 1, ms.snap.Total())
}

func TestApply_RelatedWithoutIDSkipped(t *testing.T) {
	t.Parallel()

	ms := &memStore{}
	account := model.Record{
		ID:         "001AAA000011aBc",
		ObjectType: model.ObjectAccount,
		Data:       map[string]any{"name": "Acme Corp"},
	}
	related := []model.RelatedRecord{
		{
			// Listed contact without its own page visit: no ID yet.
			Record:   model.Record{ObjectType: model.ObjectContact, Data: map[string]any{"name": "Dana Lee"}},
			ParentID: account.ID,
		},
		{
			Record: model.Record{
				ID:         "003AAA000011aBc",
				ObjectType: model.ObjectContact,
				Data:       map[string]any{"name": "Pat Jones"},
			},
			ParentID: account.ID,
		},
	}

	res, err := Apply(context.Background(), ms, account, related)
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Inserted: 2}, res)
	assert.Len(t, ms.snap.Partitions["contacts"], 1)
}

func TestApply_LoadError(t *testing.T) {
	t.Parallel()

	ms := &memStore{loadErr: eris.New("disk gone")}
	_, err := Apply(context.Background(), ms, oppRecord("006AAA000011aBc", "Acme Deal"), nil)
	require.Error(t, err)
	assert.Equal(t, 0, ms.saves)
}

func TestApply_SaveError(t *testing.T) {
	t.Parallel()

	ms := &memStore{saveErr: eris.New("disk full")}
	_, err := Apply(context.Background(), ms, oppRecord("006AAA000011aBc", "Acme Deal"), nil)
	require.Error(t, err)
}
