package backlog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

func TestDueLabel(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{days: -1, want: "1 days overdue"},
		{days: -7, want: "7 days overdue"},
		{days: 0, want: "due today"},
		{days: 1, want: "due tomorrow"},
		{days: 2, want: "due in 2 days"},
		{days: 14, want: "due in 14 days"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DueLabel(tt.days))
	}
}

func TestFormatItems(t *testing.T) {
	items := []model.WorkItem{
		item(1, "Fix login", "In Progress", "2026-03-12T00:00:00Z", nil),
		item(2, "Write docs", "To Do", "", nil),
	}

	got := FormatItems(items)
	assert.Equal(t,
		"Fix login (State: In Progress, Due: 2026-03-12T00:00:00Z)\n"+
			"Write docs (State: To Do, Due: No date)",
		got)
}

func TestFormatItems_Empty(t *testing.T) {
	assert.Equal(t, "", FormatItems(nil))
}

func TestFormatPriority(t *testing.T) {
	items := []model.TaskPriority{
		{Item: item(1, "Fix login", "To Do", "", nil), DaysRemaining: -1},
		{Item: item(2, "Write docs", "To Do", "", nil), DaysRemaining: 3},
	}

	assert.Equal(t, "Fix login (1 days overdue), Write docs (due in 3 days)", FormatPriority(items))
}
