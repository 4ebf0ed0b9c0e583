// Package export renders the record store for download: full-store JSON and
// a flat CSV across all partitions. Both read the snapshot only.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/capture-cli/internal/model"
)

// JSON writes the full store plus an exportedAt ISO timestamp.
func JSON(w io.Writer, snap *model.Snapshot, now time.Time) error {
	doc := struct {
		*model.Snapshot
		ExportedAt string `json:"exportedAt"`
	}{
		Snapshot:   snap,
		ExportedAt: now.UTC().Format(time.RFC3339),
	}

	// The snapshot's own marshaler renders the keyed partition layout; the
	// wrapper flattens exportedAt alongside it.
	snapJSON, err := json.Marshal(doc.Snapshot)
	if err != nil {
		return eris.Wrap(err, "export: marshal snapshot")
	}
	var flat map[string]any
	if err := json.Unmarshal(snapJSON, &flat); err != nil {
		return eris.Wrap(err, "export: reshape snapshot")
	}
	flat["exportedAt"] = doc.ExportedAt

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(flat), "export: write json")
}

// CSV writes one row per record across all partitions. The header is
// id, objectType, the sorted union of observed data field names, sourceUrl,
// lastUpdated; encoding/csv handles quote-doubling for values containing
// comma, quote, or newline.
func CSV(w io.Writer, snap *model.Snapshot) error {
	fieldNames := snap.DataFieldNames()

	header := make([]string, 0, len(fieldNames)+4)
	header = append(header, "id", "objectType")
	header = append(header, fieldNames...)
	header = append(header, "sourceUrl", "lastUpdated")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for _, t := range model.ObjectTypes {
		for _, rec := range snap.Partitions[t.Partition()] {
			row := make([]string, 0, len(header))
			row = append(row, rec.ID, string(rec.ObjectType))
			for _, name := range fieldNames {
				row = append(row, cellValue(rec.Data[name]))
			}
			row = append(row, rec.SourceURL, rec.LastUpdated.UTC().Format(time.RFC3339))
			if err := cw.Write(row); err != nil {
				return eris.Wrapf(err, "export: write csv row %s", rec.ID)
			}
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
