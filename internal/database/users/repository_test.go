package users

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booknotes/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return repo, cleanup
}

func TestCreateUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := &entities.User{Username: "Alice", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(user))

	assert.NotZero(t, user.ID)
	assert.Equal(t, "Alice", user.Username)
	assert.Equal(t, "alice", user.UsernameKey)
}

func TestCreateUserRejectsCaseVariant(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.CreateUser(&entities.User{Username: "Alice", PasswordHash: "hash"}))
	assert.Error(t, repo.CreateUser(&entities.User{Username: "ALICE", PasswordHash: "hash"}))
}

func TestGetUserByUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.CreateUser(&entities.User{Username: "Alice", PasswordHash: "hash"}))

	t.Run("exact case", func(t *testing.T) {
		user, err := repo.GetUserByUsername("Alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Username)
	})

	t.Run("different case", func(t *testing.T) {
		user, err := repo.GetUserByUsername("aLiCe")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Username)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetUserByUsername("bob")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestGetUserByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := &entities.User{Username: "Alice", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(user))

	found, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetUserByID(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUsernameExists(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	exists, err := repo.UsernameExists("alice")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.CreateUser(&entities.User{Username: "Alice", PasswordHash: "hash"}))

	exists, err = repo.UsernameExists("ALICE")
	require.NoError(t, err)
	assert.True(t, exists)
}
