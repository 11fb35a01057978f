package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

func chatRequest(t *testing.T, user model.User, body string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	r = r.WithContext(context.WithValue(r.Context(), userKey, user))
	return httptest.NewRecorder(), r
}

func TestChat_AppendsTranscriptInOrder(t *testing.T) {
	users := newFakeUserRepo()
	u, err := users.Create(context.Background(), model.User{Username: "jane", Email: "jane@x.com"})
	require.NoError(t, err)

	h := NewChatHandler(echoBot{reply: "All work items:"}, users, zap.NewNop())

	w, r := chatRequest(t, u, `{"message": "list all tasks"}`)
	h.Chat(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "All work items:", resp["response"])

	history, err := users.History(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ChatEntry{Type: model.EntryUser, Text: "list all tasks"}, history[0])
	assert.Equal(t, model.ChatEntry{Type: model.EntryBot, Text: "All work items:"}, history[1])
}

// stalledBot waits out the turn context, the way a hung model call that
// honors cancellation would.
type stalledBot struct{}

func (stalledBot) HandleMessage(ctx context.Context, message string, user model.User) string {
	<-ctx.Done()
	return "Error from model: " + ctx.Err().Error()
}

func TestChat_TurnDeadlineBoundsStalledModel(t *testing.T) {
	users := newFakeUserRepo()
	u, err := users.Create(context.Background(), model.User{Username: "jane", Email: "jane@x.com"})
	require.NoError(t, err)

	h := NewChatHandler(stalledBot{}, users, zap.NewNop())
	h.turnTimeout = 20 * time.Millisecond

	start := time.Now()
	w, r := chatRequest(t, u, `{"message": "summarize my tasks"}`)
	h.Chat(w, r)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["response"], "Error from model:")

	// The degraded turn still lands in the transcript as a pair.
	history, err := users.History(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.EntryBot, history[1].Type)
}

func TestChat_EmptyMessage(t *testing.T) {
	users := newFakeUserRepo()
	u, _ := users.Create(context.Background(), model.User{Username: "jane", Email: "jane@x.com"})

	h := NewChatHandler(echoBot{reply: "unused"}, users, zap.NewNop())

	w, r := chatRequest(t, u, `{"message": "   "}`)
	h.Chat(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	history, err := users.History(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChat_InvalidJSON(t *testing.T) {
	users := newFakeUserRepo()
	u, _ := users.Create(context.Background(), model.User{Username: "jane", Email: "jane@x.com"})

	h := NewChatHandler(echoBot{reply: "unused"}, users, zap.NewNop())

	w, r := chatRequest(t, u, `{not json`)
	h.Chat(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	users := newFakeUserRepo()
	u, _ := users.Create(context.Background(), model.User{Username: "jane", Email: "jane@x.com"})
	require.NoError(t, users.AppendHistory(context.Background(), u.ID,
		model.ChatEntry{Type: model.EntryUser, Text: "hi"},
		model.ChatEntry{Type: model.EntryBot, Text: "hello"},
	))

	h := NewChatHandler(echoBot{}, users, zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r = r.WithContext(context.WithValue(r.Context(), userKey, u))
	h.History(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var history []model.ChatEntry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&history))
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Text)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodDelete, "/api/history", nil)
	r = r.WithContext(context.WithValue(r.Context(), userKey, u))
	h.DeleteHistory(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	got, err := users.History(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
