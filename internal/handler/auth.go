package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
	"github.com/harsha86604/Backlog-excellence-bot/internal/repo"
	"github.com/harsha86604/Backlog-excellence-bot/internal/service"
	"github.com/harsha86604/Backlog-excellence-bot/internal/session"
	"github.com/harsha86604/Backlog-excellence-bot/pkg/respond"
)

type ctxKey int

const userKey ctxKey = 0

// UserFrom returns the authenticated user placed by RequireUser.
func UserFrom(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userKey).(model.User)
	return u, ok
}

type AuthHandler struct {
	users    *service.UserService
	sessions *session.Manager
	logger   *zap.Logger
}

func NewAuthHandler(users *service.UserService, sessions *session.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// RequireUser resolves the session cookie and loads the account. Without
// a valid session the request stops at 401.
func (h *AuthHandler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil {
			respond.Error(w, r, http.StatusUnauthorized, "login required")
			return
		}
		userID, ok := h.sessions.Resolve(cookie.Value)
		if !ok {
			respond.Error(w, r, http.StatusUnauthorized, "login required")
			return
		}
		user, err := h.users.Get(r.Context(), userID)
		if err != nil {
			h.handleErrors(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	token := h.sessions.Create(user.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respond.JSON(w, r, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		h.sessions.Destroy(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   session.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	respond.Message(w, r, http.StatusOK, "logged out")
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	respond.JSON(w, r, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req struct {
		DevOpsEmail string `json:"devops_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.users.SetDevOpsIdentity(r.Context(), user.ID, req.DevOpsEmail); err != nil {
		if errors.Is(err, service.ErrValidation) {
			respond.Error(w, r, http.StatusBadRequest, `use format: "Display Name <email@domain.com>"`)
			return
		}
		h.handleErrors(w, r, err)
		return
	}
	respond.Message(w, r, http.StatusOK, "profile updated")
}

func (h *AuthHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	case errors.Is(err, service.ErrAlreadyExists):
		respond.Error(w, r, http.StatusConflict, "username or email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "invalid email or password")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
