package repo

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatal(err)
	}

	pool.Exec(context.Background(), "TRUNCATE users RESTART IDENTITY CASCADE")

	return pool
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repo := NewUserRepo(pool)

	created, err := repo.Create(context.Background(), model.User{
		Username:     "jane",
		Email:        "jane@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byEmail, err := repo.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrorNotFound)
}

func TestUserRepo_DuplicateIsConflict(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repo := NewUserRepo(pool)
	u := model.User{Username: "jane", Email: "jane@example.com", PasswordHash: "hash"}

	_, err := repo.Create(context.Background(), u)
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, ErrorConflict)
}

func TestUserRepo_History(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repo := NewUserRepo(pool)
	u, err := repo.Create(context.Background(), model.User{
		Username: "jane", Email: "jane@example.com", PasswordHash: "hash",
	})
	require.NoError(t, err)

	history, err := repo.History(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	err = repo.AppendHistory(context.Background(), u.ID,
		model.ChatEntry{Type: model.EntryUser, Text: "hi"},
		model.ChatEntry{Type: model.EntryBot, Text: "hello"},
	)
	require.NoError(t, err)

	history, err = repo.History(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.EntryUser, history[0].Type)
	assert.Equal(t, model.EntryBot, history[1].Type)

	require.NoError(t, repo.ClearHistory(context.Background(), u.ID))
	history, err = repo.History(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
