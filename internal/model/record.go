// Package model defines the record types shared across capture, storage, and export.
package model

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/rotisserie/eris"
)

// ObjectType identifies the kind of CRM record a capture produced.
type ObjectType string

const (
	ObjectOpportunity ObjectType = "opportunity"
	ObjectLead        ObjectType = "lead"
	ObjectContact     ObjectType = "contact"
	ObjectAccount     ObjectType = "account"
	ObjectTask        ObjectType = "task"
)

// ObjectTypes lists all supported object types in partition order.
var ObjectTypes = []ObjectType{
	ObjectOpportunity,
	ObjectLead,
	ObjectContact,
	ObjectAccount,
	ObjectTask,
}

var partitionNames = map[ObjectType]string{
	ObjectOpportunity: "opportunities",
	ObjectLead:        "leads",
	ObjectContact:     "contacts",
	ObjectAccount:     "accounts",
	ObjectTask:        "tasks",
}

// APIName returns the Salesforce SObject API name for the object type
// (the path segment used in Lightning record URLs).
func (t ObjectType) APIName() string {
	switch t {
	case ObjectOpportunity:
		return "Opportunity"
	case ObjectLead:
		return "Lead"
	case ObjectContact:
		return "Contact"
	case ObjectAccount:
		return "Account"
	case ObjectTask:
		return "Task"
	default:
		return ""
	}
}

// Partition returns the store partition name for the object type.
func (t ObjectType) Partition() string {
	return partitionNames[t]
}

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	_, ok := partitionNames[t]
	return ok
}

// PartitionObject resolves a partition name back to its object type.
func PartitionObject(partition string) (ObjectType, bool) {
	for t, p := range partitionNames {
		if p == partition {
			return t, true
		}
	}
	return "", false
}

// Record is one captured CRM record. ID is derived from the record page URL
// and is immutable once captured; Data fields are independently nullable —
// a missing field is a normal capture outcome, not an error.
type Record struct {
	ID          string         `json:"id"`
	ObjectType  ObjectType     `json:"objectType"`
	Data        map[string]any `json:"data"`
	SourceURL   string         `json:"sourceUrl"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// RelatedRecord is a partial record discovered on another record's page
// (e.g. a contact listed on an account). ParentID is a non-owning
// back-reference; the missing fields are filled when the record's own page
// is eventually captured.
type RelatedRecord struct {
	Record
	ParentID string `json:"parentId"`
}

// Snapshot is the full persisted collection: one ordered list of records per
// partition plus the last sync time. Within a partition IDs are unique;
// uniqueness is enforced by the merger, not the schema.
type Snapshot struct {
	Partitions map[string][]Record
	LastSync   time.Time
}

// NewSnapshot returns an empty snapshot with no partitions allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{Partitions: make(map[string][]Record)}
}

// Find returns the record with the given ID in the object type's partition.
func (s *Snapshot) Find(t ObjectType, id string) (Record, bool) {
	for _, r := range s.Partitions[t.Partition()] {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Total returns the number of records across all partitions.
func (s *Snapshot) Total() int {
	n := 0
	for _, recs := range s.Partitions {
		n += len(recs)
	}
	return n
}

// MarshalJSON renders the snapshot in its persisted layout: partition names
// as top-level keys plus lastSync as epoch milliseconds.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(partitionNames)+1)
	for _, t := range ObjectTypes {
		recs := s.Partitions[t.Partition()]
		if recs == nil {
			recs = []Record{}
		}
		out[t.Partition()] = recs
	}
	var lastSync int64
	if !s.LastSync.IsZero() {
		lastSync = s.LastSync.UnixMilli()
	}
	out["lastSync"] = lastSync
	return json.Marshal(out)
}

// UnmarshalJSON parses the persisted layout produced by MarshalJSON.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: unmarshal snapshot")
	}

	s.Partitions = make(map[string][]Record)
	for _, t := range ObjectTypes {
		part := t.Partition()
		msg, ok := raw[part]
		if !ok {
			continue
		}
		var recs []Record
		if err := json.Unmarshal(msg, &recs); err != nil {
			return eris.Wrapf(err, "model: unmarshal partition %s", part)
		}
		s.Partitions[part] = recs
	}

	if msg, ok := raw["lastSync"]; ok {
		var millis int64
		if err := json.Unmarshal(msg, &millis); err != nil {
			return eris.Wrap(err, "model: unmarshal lastSync")
		}
		if millis > 0 {
			s.LastSync = time.UnixMilli(millis).UTC()
		}
	}

	return nil
}

// DataFieldNames returns the sorted union of data field names observed across
// all records in the snapshot. Used to build the CSV export header.
func (s *Snapshot) DataFieldNames() []string {
	seen := make(map[string]struct{})
	for _, recs := range s.Partitions {
		for _, r := range recs {
			for name := range r.Data {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
