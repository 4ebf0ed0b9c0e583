package extract

import (
	"context"
	"strings"

	"github.com/sells-group/capture-cli/internal/identity"
	"github.com/sells-group/capture-cli/internal/model"
	"github.com/sells-group/capture-cli/internal/page"
	"github.com/sells-group/capture-cli/internal/textscan"
)

// StageNames is the fixed opportunity stage vocabulary. An extracted stage
// must be one of these; anything else came from a different widget.
var StageNames = []string{
	"Prospecting",
	"Qualification",
	"Needs Analysis",
	"Value Proposition",
	"Id. Decision Makers",
	"Perception Analysis",
	"Proposal/Price Quote",
	"Negotiation/Review",
	"Closed Won",
	"Closed Lost",
}

// resolveStage finds the opportunity's active stage. The stage and the task
// status render through the same chevron widget, so the search is gated on
// the URL matching the opportunity pattern and validated against the stage
// vocabulary at every tier:
//
//  1. any line exactly equal to a stage name
//  2. the line after the "Stage" label, if it names a stage
//  3. the progress-path slot text, scanned for any stage name
func resolveStage(ctx context.Context, pc *pageContext) (string, bool) {
	if _, ok := identity.FromURL(pc.src.URL(), model.ObjectOpportunity); !ok {
		return "", false
	}

	for _, stage := range StageNames {
		if textscan.ContainsExact(pc.lines, stage) {
			return stage, true
		}
	}

	if v, ok := textscan.FindByLabel(pc.lines, "Stage", textscan.Options{
		Reserved: pc.schema.reserved,
	}); ok {
		for _, stage := range StageNames {
			if strings.EqualFold(v, stage) {
				return stage, true
			}
		}
	}

	slot, err := pc.src.SlotText(ctx, page.SlotProgressPath)
	if err == nil && slot != "" {
		for _, stage := range StageNames {
			if strings.Contains(slot, stage) {
				return stage, true
			}
		}
	}

	return "", false
}
