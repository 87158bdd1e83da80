package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

// newTestDB opens a fresh in-memory database, one per test, shared across
// the connections of that test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%v?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(db))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) domain.User {
	t.Helper()

	repo := repository.NewUserRepository(dao.NewUserDAO(db))
	user, err := repo.Create(context.Background(), domain.User{
		Email:    email,
		Password: "hashed-password",
		Name:     "Test User",
		Role:     "customer",
	})
	require.NoError(t, err)

	return user
}

func linkTestAccount(t *testing.T, db *gorm.DB, userID uint, posRef string) domain.LoyaltyAccount {
	t.Helper()

	repo := repository.NewLoyaltyRepository(dao.NewLoyaltyDAO(db))
	account, err := repo.GetOrCreateAccount(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, repo.LinkAccountPOSRef(context.Background(), account.ID, posRef))

	return account
}
