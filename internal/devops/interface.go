package devops

import (
	"context"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

// Directory is the surface the dispatcher needs from the work-item
// backend. *Client is the production implementation.
type Directory interface {
	FetchAll(ctx context.Context) ([]model.WorkItem, error)
	QueryWorkItems(ctx context.Context, wiql string) ([]model.WorkItemRef, error)
	Create(ctx context.Context, title, description, assignee, dueDate, status string) (int, error)
	UpdateAssignment(ctx context.Context, id int, assignee string) error
	UpdateTimeFields(ctx context.Context, id int, spent, remaining float64) error
	UpdateStatus(ctx context.Context, id int, status string) error
	Delete(ctx context.Context, id int) error
}

var _ Directory = (*Client)(nil)
