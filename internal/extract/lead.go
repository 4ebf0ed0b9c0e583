package extract

import (
	"context"
	"strings"

	"github.com/sells-group/capture-cli/internal/identity"
	"github.com/sells-group/capture-cli/internal/model"
	"github.com/sells-group/capture-cli/internal/page"
	"github.com/sells-group/capture-cli/internal/textscan"
)

// LeadStatusNames is the fixed lead status vocabulary. Deliberately disjoint
// from StageNames so the two path-shaped widgets can never cross-contaminate.
var LeadStatusNames = []string{
	"Open - Not Contacted",
	"Working - Contacted",
	"Closed - Converted",
	"Closed - Not Converted",
}

// resolveLeadStatus mirrors resolveStage against the lead status vocabulary,
// gated on the lead URL pattern.
func resolveLeadStatus(ctx context.Context, pc *pageContext) (string, bool) {
	if _, ok := identity.FromURL(pc.src.URL(), model.ObjectLead); !ok {
		return "", false
	}

	for _, status := range LeadStatusNames {
		if textscan.ContainsExact(pc.lines, status) {
			return status, true
		}
	}

	if v, ok := textscan.FindByLabel(pc.lines, "Lead Status", textscan.Options{
		Reserved: pc.schema.reserved,
	}); ok {
		for _, status := range LeadStatusNames {
			if strings.EqualFold(v, status) {
				return status, true
			}
		}
	}

	slot, err := pc.src.SlotText(ctx, page.SlotProgressPath)
	if err == nil && slot != "" {
		for _, status := range LeadStatusNames {
			if strings.Contains(slot, status) {
				return status, true
			}
		}
	}

	return "", false
}
