package backlog

import (
	"fmt"
	"strings"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

// DueLabel renders a days-remaining value the way it reads in chat.
func DueLabel(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

// FormatItems renders work items one per line for a chat response.
func FormatItems(items []model.WorkItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		due := item.DueDate()
		if due == "" {
			due = "No date"
		}
		lines = append(lines, fmt.Sprintf("%s (State: %s, Due: %s)", item.Title(), item.State(), due))
	}
	return strings.Join(lines, "\n")
}

// FormatPriority renders annotated items as a comma-joined summary.
func FormatPriority(items []model.TaskPriority) string {
	parts := make([]string, 0, len(items))
	for _, p := range items {
		parts = append(parts, fmt.Sprintf("%s (%s)", p.Item.Title(), DueLabel(p.DaysRemaining)))
	}
	return strings.Join(parts, ", ")
}
