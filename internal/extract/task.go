package extract

import (
	"context"
	"strings"

	"github.com/sells-group/capture-cli/internal/page"
	"github.com/sells-group/capture-cli/internal/textscan"
)

// TaskStatusNames is the fixed task status vocabulary.
var TaskStatusNames = []string{
	"Not Started",
	"In Progress",
	"Completed",
	"Waiting on someone else",
	"Deferred",
}

// resolveTaskStatus resolves a task's status. Tasks are the other side of
// the chevron-widget collision: the URL gate already ran in ExtractAs, so
// only vocabulary validation remains.
func resolveTaskStatus(ctx context.Context, pc *pageContext) (string, bool) {
	if v, ok := textscan.FindByLabel(pc.lines, "Status", textscan.Options{
		Reserved: pc.schema.reserved,
	}); ok {
		for _, status := range TaskStatusNames {
			if strings.EqualFold(v, status) {
				return status, true
			}
		}
	}

	for _, status := range TaskStatusNames {
		if textscan.ContainsExact(pc.lines, status) {
			return status, true
		}
	}

	slot, err := pc.src.SlotText(ctx, page.SlotProgressPath)
	if err == nil && slot != "" {
		for _, status := range TaskStatusNames {
			if strings.Contains(slot, status) {
				return status, true
			}
		}
	}

	return "", false
}
