package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
	"github.com/harsha86604/Backlog-excellence-bot/internal/repo"
	"github.com/harsha86604/Backlog-excellence-bot/pkg/respond"
)

const defaultTurnTimeout = 60 * time.Second

// Responder runs one chat turn. *bot.Bot is the production implementation.
type Responder interface {
	HandleMessage(ctx context.Context, message string, user model.User) string
}

type ChatHandler struct {
	bot    Responder
	users  repo.UserRepository
	logger *zap.Logger

	// One lock per account: a turn appends its user and bot entries as a
	// unit, so concurrent turns for the same account must not interleave.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex

	// Upper bound on one turn. The request context carries no deadline of
	// its own, and a turn holds the account lock while it runs.
	turnTimeout time.Duration
}

func NewChatHandler(bot Responder, users repo.UserRepository, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		bot:         bot,
		users:       users,
		logger:      logger,
		locks:       make(map[int64]*sync.Mutex),
		turnTimeout: defaultTurnTimeout,
	}
}

func (h *ChatHandler) userLock(id int64) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.locks[id]
	if !ok {
		l = &sync.Mutex{}
		h.locks[id] = l
	}
	return l
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		respond.Error(w, r, http.StatusBadRequest, "empty message")
		return
	}

	lock := h.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	turnCtx, cancel := context.WithTimeout(r.Context(), h.turnTimeout)
	defer cancel()
	response := h.bot.HandleMessage(turnCtx, message, user)

	if err := h.users.AppendHistory(r.Context(), user.ID,
		model.ChatEntry{Type: model.EntryUser, Text: message},
		model.ChatEntry{Type: model.EntryBot, Text: response},
	); err != nil {
		// The turn already produced its answer; a transcript write
		// failure is logged but does not eat the response.
		h.logger.Error("failed to append transcript", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	respond.JSON(w, r, http.StatusOK, map[string]string{
		"status":   "success",
		"response": response,
	})
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	history, err := h.users.History(r.Context(), user.ID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, history)
}

func (h *ChatHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	if err := h.users.ClearHistory(r.Context(), user.ID); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Message(w, r, http.StatusOK, "Chat history deleted.")
}

func (h *ChatHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
