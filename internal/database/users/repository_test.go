package users

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.Open(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "users.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db.DB), db.DB
}

func createUser(t *testing.T, repo *Repository, username string) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(user))
	return user
}

func TestRepository_CreateUser(t *testing.T) {
	repo, _ := setupTestDB(t)

	user := createUser(t, repo, "testuser")
	assert.NotZero(t, user.ID)

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.CreateUser(&entities.User{Username: "testuser", PasswordHash: "hash"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := repo.GetUserByUsername("testuser")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		assert.Equal(t, "testuser@example.com", got.Email)

		_, err = repo.GetUserByUsername("nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)

		exists, err := repo.UserExists(user.ID + 100)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestRepository_GetOrCreateToken(t *testing.T) {
	repo, _ := setupTestDB(t)
	user := createUser(t, repo, "testuser")

	first, err := repo.GetOrCreateToken(user.ID)
	require.NoError(t, err)
	assert.Len(t, first.Key, 40)

	second, err := repo.GetOrCreateToken(user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Key, second.Key, "login reuses the existing token")

	got, err := repo.GetToken(first.Key)
	require.NoError(t, err)
	assert.Equal(t, "testuser", got.User.Username)
}

func TestRepository_DeleteTokens(t *testing.T) {
	repo, db := setupTestDB(t)
	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	aliceToken, err := repo.GetOrCreateToken(alice.ID)
	require.NoError(t, err)
	bobToken, err := repo.GetOrCreateToken(bob.ID)
	require.NoError(t, err)

	t.Run("for user", func(t *testing.T) {
		n, err := repo.DeleteTokensForUser(alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = repo.GetToken(aliceToken.Key)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("created before cutoff", func(t *testing.T) {
		old := time.Now().Add(-48 * time.Hour)
		require.NoError(t, db.Model(&entities.AuthToken{}).Where("user_id = ?", bob.ID).Update("created_at", old).Error)

		n, err := repo.DeleteTokensCreatedBefore(time.Now().Add(-24 * time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = repo.GetToken(bobToken.Key)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestRepository_TouchLastLogin(t *testing.T) {
	repo, _ := setupTestDB(t)
	user := createUser(t, repo, "testuser")

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(user.ID, at))

	got, err := repo.GetUserByUsername("testuser")
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))
}
