// Package store persists the captured record collection. The collection is a
// single keyed snapshot (one list per partition plus a lastSync timestamp);
// drivers differ only in where the snapshot lives.
package store

import (
	"context"

	"github.com/sells-group/capture-cli/internal/model"
)

// Store loads and saves the full record snapshot.
type Store interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap *model.Snapshot) error
	Close() error
}

// Apply merges one record (plus any identifiable related records) into the
// persisted snapshot via read-modify-write. There is no transactional
// isolation between Load and Save; the caller guarantees one capture in
// flight at a time, matching the single-trigger model one layer up.
func Apply(ctx context.Context, s Store, rec model.Record, related []model.RelatedRecord) (MergeResult, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return MergeResult{}, err
	}

	result := Merge(snap, rec)
	for _, rel := range related {
		// Partial records without their own ID cannot be reconciled yet;
		// they ride along in the capture result only.
		if rel.ID == "" {
			continue
		}
		result.Add(Merge(snap, rel.Record))
	}

	if err := s.Save(ctx, snap); err != nil {
		return MergeResult{}, err
	}
	return result, nil
}

// RemoveByID deletes the record with the given ID from its partition.
// Returns true when a record was removed. This is the explicit user-facing
// delete path; nothing on the capture path deletes records.
func RemoveByID(snap *model.Snapshot, t model.ObjectType, id string) bool {
	part := t.Partition()
	recs := snap.Partitions[part]
	for i := range recs {
		if recs[i].ID == id {
			snap.Partitions[part] = append(recs[:i], recs[i+1:]...)
			return true
		}
	}
	return false
}
