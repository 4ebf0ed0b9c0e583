package extract

import (
	"strings"
	"time"

	"github.com/sells-group/capture-cli/internal/model"
)

// resolveRelatedContacts reads the account page's related contact list: the
// lines after the "Contacts" header (which carries a count suffix, e.g.
// "Contacts (3)") up to the next reserved label. Each entry becomes a
// partial contact record pointing back at the account. The contacts' own
// IDs are unknown until their pages are visited, so the partials carry an
// empty ID and a ParentID back-reference only.
func resolveRelatedContacts(pc *pageContext, parent model.Record, now time.Time) []model.RelatedRecord {
	spec := pc.schema.Related
	if spec == nil {
		return nil
	}

	limit := spec.Limit
	if limit <= 0 {
		limit = 10
	}

	start := -1
	header := spec.Header
	for i, line := range pc.lines {
		if hasLabelPrefix(line, header) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var related []model.RelatedRecord
	for _, line := range pc.lines[start:] {
		if pc.schema.reserved.Contains(line) {
			break
		}
		related = append(related, model.RelatedRecord{
			Record: model.Record{
				ObjectType: spec.Object,
				Data: map[string]any{
					"name":    line,
					"account": parent.Data["name"],
				},
				SourceURL:   parent.SourceURL,
				LastUpdated: now,
			},
			ParentID: parent.ID,
		})
		if len(related) >= limit {
			break
		}
	}
	return related
}

// hasLabelPrefix matches a section header that may carry a dynamic count
// suffix ("Contacts (3)"), the same prefix semantics as a partial label scan.
func hasLabelPrefix(line, header string) bool {
	return strings.HasPrefix(strings.ToLower(line), strings.ToLower(header))
}
