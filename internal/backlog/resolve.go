package backlog

import (
	"strings"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

// Resolve finds the work item whose title contains fragment, case
// insensitively. The first match in fetch order wins; no scoring. A nil
// return is the normal no-match outcome, not an error.
func Resolve(fragment string, items []model.WorkItem) *model.WorkItem {
	needle := strings.ToLower(fragment)
	for i := range items {
		if strings.Contains(strings.ToLower(items[i].Title()), needle) {
			return &items[i]
		}
	}
	return nil
}
