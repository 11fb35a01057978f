package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/harsha86604/Backlog-excellence-bot/internal/bot"
	"github.com/harsha86604/Backlog-excellence-bot/internal/devops"
	"github.com/harsha86604/Backlog-excellence-bot/internal/handler"
	"github.com/harsha86604/Backlog-excellence-bot/internal/intent"
	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
	"github.com/harsha86604/Backlog-excellence-bot/internal/repo"
	"github.com/harsha86604/Backlog-excellence-bot/internal/service"
	"github.com/harsha86604/Backlog-excellence-bot/internal/session"
)

// memUserRepo keeps accounts and transcripts in memory so the full HTTP
// stack can run without postgres.
type memUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]model.User
	history map[int64][]model.ChatEntry
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		nextID:  1,
		users:   make(map[int64]model.User),
		history: make(map[int64][]model.ChatEntry),
	}
}

func (m *memUserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return model.User{}, repo.ErrorConflict
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	m.history[u.ID] = []model.ChatEntry{}
	return u, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repo.ErrorNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repo.ErrorNotFound
}

func (m *memUserRepo) ExistsByNameOrEmail(ctx context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) UpdateDevOpsEmail(ctx context.Context, id int64, devopsEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repo.ErrorNotFound
	}
	u.DevOpsEmail = devopsEmail
	m.users[id] = u
	return nil
}

func (m *memUserRepo) History(ctx context.Context, id int64) ([]model.ChatEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.history[id]
	if !ok {
		return nil, repo.ErrorNotFound
	}
	out := make([]model.ChatEntry, len(h))
	copy(out, h)
	return out, nil
}

func (m *memUserRepo) AppendHistory(ctx context.Context, id int64, entries ...model.ChatEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.history[id]; !ok {
		return repo.ErrorNotFound
	}
	m.history[id] = append(m.history[id], entries...)
	return nil
}

func (m *memUserRepo) ClearHistory(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.history[id]; !ok {
		return repo.ErrorNotFound
	}
	m.history[id] = []model.ChatEntry{}
	return nil
}

var _ repo.UserRepository = (*memUserRepo)(nil)

// scriptedModel plays the language-model collaborator: classification
// prompts get the scripted intent JSON, everything else gets ChatReply.
type scriptedModel struct {
	mu         sync.Mutex
	IntentJSON string
	ChatReply  string
	Prompts    []string
}

func (s *scriptedModel) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	return s.ChatReply, nil
}

func (s *scriptedModel) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	return s.IntentJSON, nil
}

// StubBacklog is a fake Azure DevOps API over httptest: WIQL and details
// reads plus create/delete mutations against an in-memory item list.
type StubBacklog struct {
	mu     sync.Mutex
	nextID int
	Items  []model.WorkItem
}

func NewStubBacklog(items ...model.WorkItem) *StubBacklog {
	return &StubBacklog{nextID: 1000, Items: items}
}

func (s *StubBacklog) Server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(srv.Close)
	return srv
}

func (s *StubBacklog) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case strings.Contains(r.URL.Path, "/wiql"):
		refs := make([]map[string]any, 0, len(s.Items))
		for _, it := range s.Items {
			refs = append(refs, map[string]any{"id": it.ID})
		}
		json.NewEncoder(w).Encode(map[string]any{"workItems": refs})

	case strings.Contains(r.URL.Path, "/workitems/$Task"):
		var doc []map[string]any
		json.NewDecoder(r.Body).Decode(&doc)
		fields := map[string]any{}
		for _, op := range doc {
			path, _ := op["path"].(string)
			fields[strings.TrimPrefix(path, "/fields/")] = op["value"]
		}
		s.nextID++
		s.Items = append(s.Items, model.WorkItem{ID: s.nextID, Fields: fields})
		json.NewEncoder(w).Encode(map[string]any{"id": s.nextID})

	case r.Method == http.MethodDelete:
		parts := strings.Split(r.URL.Path, "/")
		idStr := parts[len(parts)-1]
		kept := s.Items[:0]
		for _, it := range s.Items {
			if idStr != strconv.Itoa(it.ID) {
				kept = append(kept, it)
			}
		}
		s.Items = kept
		w.Write([]byte("{}"))

	default:
		json.NewEncoder(w).Encode(map[string]any{"value": s.Items})
	}
}

// TestApp is the whole HTTP surface wired against stub collaborators.
type TestApp struct {
	Server  *httptest.Server
	Users   *memUserRepo
	Model   *scriptedModel
	Backlog *StubBacklog
}

func NewTestApp(t *testing.T, backlog *StubBacklog) *TestApp {
	t.Helper()

	logger := zap.NewNop()
	users := newMemUserRepo()
	modelStub := &scriptedModel{ChatReply: "Hello!"}

	directory := devops.New(devops.Options{
		BaseURL: backlog.Server(t).URL,
		Project: "Capstone",
		PAT:     "test-pat",
	})

	classifier := intent.NewClassifier(modelStub, logger)
	chatBot := bot.New(directory, classifier, modelStub, logger)

	userService := service.NewUserService(users)
	sessions := session.NewManager(time.Hour)

	authHandler := handler.NewAuthHandler(userService, sessions, logger)
	chatHandler := handler.NewChatHandler(chatBot, users, logger)

	r := chi.NewRouter()
	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authHandler.RequireUser)
		r.Post("/api/logout", authHandler.Logout)
		r.Get("/api/profile", authHandler.Profile)
		r.Put("/api/profile", authHandler.UpdateProfile)
		r.Post("/api/chat", chatHandler.Chat)
		r.Get("/api/history", chatHandler.History)
		r.Delete("/api/history", chatHandler.DeleteHistory)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &TestApp{Server: srv, Users: users, Model: modelStub, Backlog: backlog}
}
