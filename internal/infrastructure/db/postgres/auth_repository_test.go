package postgres

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/foundly/admin-backend/internal/core/domain"
)

func newTestRepo(t *testing.T) *AuthRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	repo := NewAuthRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func TestAuthRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "hash",
		Role:         domain.RoleAdmin,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)
	require.Equal(t, domain.RoleAdmin, byEmail.Role)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", byID.Email)
}

func TestAuthRepository_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Email: "bob@example.com", PasswordHash: "h", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Email: "bob@example.com", PasswordHash: "h2", Role: domain.RoleUser})
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthRepository_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, "no-such-id")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	require.ErrorIs(t, repo.Delete(ctx, "no-such-id"), domain.ErrUserNotFound)
}

func TestAuthRepository_ListAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, &domain.User{Email: "a@example.com", PasswordHash: "h", Role: domain.RoleUser})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.User{Email: "b@example.com", PasswordHash: "h", Role: domain.RoleUser})
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	require.NoError(t, repo.Delete(ctx, a.ID))

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "b@example.com", users[0].Email)
}
