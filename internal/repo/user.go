package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, devops_email, chat_history)
		VALUES ($1, $2, $3, $4, '[]'::jsonb)
		RETURNING id, username, email, password_hash, devops_email, created_at
	`, u.Username, u.Email, u.PasswordHash, u.DevOpsEmail).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DevOpsEmail, &u.CreatedAt,
	)
	return u, r.mapError(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.get(ctx, "email = $1", email)
}

func (r *UserRepo) get(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, devops_email, created_at
		FROM users
		WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DevOpsEmail, &u.CreatedAt)

	if err == pgx.ErrNoRows {
		return u, ErrorNotFound
	}
	return u, err
}

func (r *UserRepo) ExistsByNameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
	`, username, email).Scan(&exists)
	return exists, err
}

func (r *UserRepo) UpdateDevOpsEmail(ctx context.Context, id int64, devopsEmail string) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE users SET devops_email = $2 WHERE id = $1
	`, id, devopsEmail)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *UserRepo) History(ctx context.Context, id int64) ([]model.ChatEntry, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT chat_history FROM users WHERE id = $1
	`, id).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, ErrorNotFound
	}
	if err != nil {
		return nil, err
	}

	entries := []model.ChatEntry{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendHistory adds entries in one statement. The jsonb concatenation
// runs under the row lock, so a turn's user and bot entries land adjacent
// even with concurrent turns for the same account.
func (r *UserRepo) AppendHistory(ctx context.Context, id int64, entries ...model.ChatEntry) error {
	if len(entries) == 0 {
		return nil
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `
		UPDATE users SET chat_history = chat_history || $2::jsonb WHERE id = $1
	`, id, raw)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *UserRepo) ClearHistory(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE users SET chat_history = '[]'::jsonb WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *UserRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}

var _ UserRepository = (*UserRepo)(nil)
