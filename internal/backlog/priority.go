package backlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

// dueSoonDays is the look-ahead window for high-priority selection.
// Overdue items are negative and fall under the same threshold.
const dueSoonDays = 3

// DaysRemaining computes whole days between today and the item's due
// date, negative when overdue. ok is false for a missing or unparsable
// due date; such items simply drop out of date-based views.
func DaysRemaining(item model.WorkItem, today time.Time) (int, bool) {
	raw := item.DueDate()
	if raw == "" {
		return 0, false
	}
	due, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0, false
	}
	// Date-only diff: upstream always stores midnight UTC, time-of-day
	// is ignored either way.
	d1 := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	d2 := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(d1.Sub(d2).Hours() / 24), true
}

// AssigneeText normalizes the assignee field to matchable text: the
// uniqueName of an identity object when present, otherwise the whole
// value rendered as a string.
func AssigneeText(v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return a
	case map[string]any:
		if name, ok := a["uniqueName"].(string); ok {
			return name
		}
	}
	return fmt.Sprintf("%v", v)
}

func assigneeMatches(item model.WorkItem, identity string) bool {
	return strings.Contains(strings.ToLower(AssigneeText(item.AssignedTo())), strings.ToLower(identity))
}

// HighPriority selects items that are overdue or due within three days.
// A non-empty assigneeFilter additionally requires a case-insensitive
// substring match against the assignee.
func HighPriority(items []model.WorkItem, today time.Time, assigneeFilter string) []model.TaskPriority {
	out := []model.TaskPriority{}
	for _, item := range items {
		days, ok := DaysRemaining(item, today)
		if !ok || days > dueSoonDays {
			continue
		}
		if assigneeFilter != "" && !assigneeMatches(item, assigneeFilter) {
			continue
		}
		out = append(out, model.TaskPriority{Item: item, DaysRemaining: days})
	}
	return out
}

// Pending returns items whose state is not a terminal one.
func Pending(items []model.WorkItem) []model.WorkItem {
	return filter(items, func(item model.WorkItem) bool {
		switch strings.ToLower(item.State()) {
		case "closed", "done", "removed", "resolved":
			return false
		}
		return true
	})
}

// Completed returns items in a finished state.
func Completed(items []model.WorkItem) []model.WorkItem {
	return filter(items, func(item model.WorkItem) bool {
		switch strings.ToLower(item.State()) {
		case "done", "removed":
			return true
		}
		return false
	})
}

// AssignedTo returns items whose assignee matches identity.
func AssignedTo(items []model.WorkItem, identity string) []model.WorkItem {
	return filter(items, func(item model.WorkItem) bool {
		return assigneeMatches(item, identity)
	})
}

func filter(items []model.WorkItem, keep func(model.WorkItem) bool) []model.WorkItem {
	out := []model.WorkItem{}
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
