package handler

import (
	"context"
	"sync"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
	"github.com/harsha86604/Backlog-excellence-bot/internal/repo"
)

// fakeUserRepo is an in-memory UserRepository for handler tests.
type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]model.User
	history map[int64][]model.ChatEntry
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		nextID:  1,
		users:   make(map[int64]model.User),
		history: make(map[int64][]model.ChatEntry),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	f.history[u.ID] = []model.ChatEntry{}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repo.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repo.ErrorNotFound
}

func (f *fakeUserRepo) ExistsByNameOrEmail(ctx context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateDevOpsEmail(ctx context.Context, id int64, devopsEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repo.ErrorNotFound
	}
	u.DevOpsEmail = devopsEmail
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) History(ctx context.Context, id int64) ([]model.ChatEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.history[id]
	if !ok {
		return nil, repo.ErrorNotFound
	}
	out := make([]model.ChatEntry, len(h))
	copy(out, h)
	return out, nil
}

func (f *fakeUserRepo) AppendHistory(ctx context.Context, id int64, entries ...model.ChatEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.history[id]; !ok {
		return repo.ErrorNotFound
	}
	f.history[id] = append(f.history[id], entries...)
	return nil
}

func (f *fakeUserRepo) ClearHistory(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.history[id]; !ok {
		return repo.ErrorNotFound
	}
	f.history[id] = []model.ChatEntry{}
	return nil
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)

func testAccount() model.User {
	return model.User{Username: "jane", Email: "jane@x.com", PasswordHash: "x"}
}

// echoBot answers every message with a canned reply.
type echoBot struct {
	reply string
}

func (e echoBot) HandleMessage(ctx context.Context, message string, user model.User) string {
	return e.reply
}
