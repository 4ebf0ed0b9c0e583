package store

import (
	"time"

	"github.com/sells-group/capture-cli/internal/model"
)

// MergeResult reports what a merge did. Exactly one of the counters is 1.
type MergeResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Add accumulates another merge's counters (batch captures).
func (m *MergeResult) Add(other MergeResult) {
	m.Inserted += other.Inserted
	m.Updated += other.Updated
}

// Merge reconciles one captured record into the snapshot's partition for its
// object type, creating the partition if absent. An existing entry with the
// same ID is fully replaced — stale fields from an earlier partial capture
// are discarded, never unioned. LastSync is refreshed on every merge,
// including no-op re-captures.
//
// Merge mutates the snapshot and is not safe for concurrent use; callers
// serialize (one capture in flight at a time).
func Merge(snap *model.Snapshot, rec model.Record) MergeResult {
	if snap.Partitions == nil {
		snap.Partitions = make(map[string][]model.Record)
	}

	part := rec.ObjectType.Partition()
	recs := snap.Partitions[part]

	snap.LastSync = time.Now().UTC()

	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			return MergeResult{Updated: 1}
		}
	}

	snap.Partitions[part] = append(recs, rec)
	return MergeResult{Inserted: 1}
}
