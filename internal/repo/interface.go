package repo

import (
	"context"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

// UserRepository is the account + transcript store. The transcript is
// append-only: entries are added per turn and only ever read back whole
// for display, never for dispatch decisions.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByNameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateDevOpsEmail(ctx context.Context, id int64, devopsEmail string) error

	History(ctx context.Context, id int64) ([]model.ChatEntry, error)
	AppendHistory(ctx context.Context, id int64, entries ...model.ChatEntry) error
	ClearHistory(ctx context.Context, id int64) error
}
