package backlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

func TestResolve(t *testing.T) {
	items := []model.WorkItem{
		item(1, "Fix Login Page", "To Do", "", nil),
		item(2, "Login audit", "To Do", "", nil),
		item(3, "Write docs", "To Do", "", nil),
	}

	tests := []struct {
		name     string
		fragment string
		wantID   int
		wantNil  bool
	}{
		{name: "case-insensitive substring", fragment: "login", wantID: 1},
		{name: "upper-case fragment", fragment: "LOGIN", wantID: 1},
		{name: "first match in fetch order wins", fragment: "audit", wantID: 2},
		{name: "exact title", fragment: "Write docs", wantID: 3},
		{name: "no match", fragment: "zzz", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.fragment, items)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestResolve_EmptyDirectory(t *testing.T) {
	assert.Nil(t, Resolve("anything", nil))
}
