package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
	"github.com/harsha86604/Backlog-excellence-bot/internal/repo"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyExists      = errors.New("username or email already exists")
)

// devopsIdentityRe accepts the `Display Name <email@domain>` form used
// for work-item assignees.
var devopsIdentityRe = regexp.MustCompile(`^.+ <[^<>@ ]+@[^<>@ ]+>$`)

type UserService struct {
	repo repo.UserRepository
}

func NewUserService(repo repo.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Register(ctx context.Context, username, email, password, confirm string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return model.User{}, ErrValidation
	}
	if password != confirm {
		return model.User{}, ErrValidation
	}

	exists, err := s.repo.ExistsByNameOrEmail(ctx, username, email)
	if err != nil {
		return model.User{}, err
	}
	if exists {
		return model.User{}, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}

	u, err := s.repo.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, repo.ErrorConflict) {
		return model.User{}, ErrAlreadyExists
	}
	return u, err
}

func (s *UserService) Login(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrorNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// SetDevOpsIdentity stores the assignee identity used by backlog filters.
func (s *UserService) SetDevOpsIdentity(ctx context.Context, id int64, identity string) error {
	identity = strings.TrimSpace(identity)
	if !devopsIdentityRe.MatchString(identity) {
		return ErrValidation
	}
	return s.repo.UpdateDevOpsEmail(ctx, id, identity)
}
