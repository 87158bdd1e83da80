package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

func newLoyaltyService(db *gorm.DB) *LoyaltyService {
	return NewLoyaltyService(repository.NewLoyaltyRepository(dao.NewLoyaltyDAO(db)))
}

func TestApplyPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("credits points and is idempotent per order reference", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db, "alice@example.com")
		linkTestAccount(t, db, user.ID, "POS-ALICE")
		svc := newLoyaltyService(db)

		first, err := svc.ApplyPurchase(ctx, "POS-ALICE", "ORD-1", 125, "dinner")
		require.NoError(t, err)
		require.True(t, first.Applied)
		require.Equal(t, 12, first.PointsDelta)
		require.Equal(t, user.ID, first.UserID)

		second, err := svc.ApplyPurchase(ctx, "POS-ALICE", "ORD-1", 125, "dinner")
		require.NoError(t, err)
		require.False(t, second.Applied)
		require.Equal(t, first.AccountID, second.AccountID)

		account, err := svc.GetAccount(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 12, account.TotalPoints)
		require.Equal(t, 12, account.CurrentPoints)
		require.Equal(t, 125.0, account.TotalSpent)
		require.Equal(t, 1, account.VisitCount)
		require.Equal(t, domain.TierBronze, account.Tier)

		transactions, err := svc.ListTransactions(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, transactions, 1)
		require.Equal(t, domain.TransactionPurchase, transactions[0].Kind)
	})

	t.Run("drops events for unknown customer references", func(t *testing.T) {
		db := newTestDB(t)
		svc := newLoyaltyService(db)

		result, err := svc.ApplyPurchase(ctx, "POS-NOBODY", "ORD-1", 50, "lunch")
		require.NoError(t, err)
		require.False(t, result.Applied)
		require.Zero(t, result.AccountID)
	})

	t.Run("invokes the purchase hook once per applied order", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db, "bob@example.com")
		linkTestAccount(t, db, user.ID, "POS-BOB")
		svc := newLoyaltyService(db)

		hook := &recordingHook{}
		svc.SetPurchaseHook(hook)

		_, err := svc.ApplyPurchase(ctx, "POS-BOB", "ORD-1", 80, "")
		require.NoError(t, err)
		_, err = svc.ApplyPurchase(ctx, "POS-BOB", "ORD-1", 80, "")
		require.NoError(t, err)

		require.Len(t, hook.calls, 1)
		require.Equal(t, user.ID, hook.calls[0].UserID)
	})
}

type recordingHook struct {
	calls []domain.PurchaseResult
}

func (h *recordingHook) OnPurchaseApplied(_ context.Context, result domain.PurchaseResult) {
	h.calls = append(h.calls, result)
}

func TestReversePurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors the purchase and rejects a second reversal", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db, "carol@example.com")
		linkTestAccount(t, db, user.ID, "POS-CAROL")
		svc := newLoyaltyService(db)

		_, err := svc.ApplyPurchase(ctx, "POS-CAROL", "ORD-1", 600, "banquet")
		require.NoError(t, err)

		account, err := svc.GetAccount(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, domain.TierSilver, account.Tier)

		reversed, err := svc.ReversePurchase(ctx, "POS-CAROL", "ORD-1")
		require.NoError(t, err)
		require.True(t, reversed.Applied)
		require.Equal(t, -60, reversed.PointsDelta)

		account, err = svc.GetAccount(ctx, user.ID)
		require.NoError(t, err)
		require.Zero(t, account.TotalPoints)
		require.Zero(t, account.CurrentPoints)
		require.Zero(t, account.TotalSpent)
		require.Zero(t, account.VisitCount)
		require.Equal(t, domain.TierBronze, account.Tier)

		transactions, err := svc.ListTransactions(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, transactions, 2)

		_, err = svc.ReversePurchase(ctx, "POS-CAROL", "ORD-1")
		require.ErrorIs(t, err, ErrPurchaseAlreadyReversed)
	})

	t.Run("reversal of an unknown order is a no-op", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db, "dave@example.com")
		linkTestAccount(t, db, user.ID, "POS-DAVE")
		svc := newLoyaltyService(db)

		result, err := svc.ReversePurchase(ctx, "POS-DAVE", "ORD-GHOST")
		require.NoError(t, err)
		require.False(t, result.Applied)
	})

	t.Run("clamps account totals at zero", func(t *testing.T) {
		db := newTestDB(t)
		user := createTestUser(t, db, "erin@example.com")
		account := linkTestAccount(t, db, user.ID, "POS-ERIN")
		svc := newLoyaltyService(db)

		_, err := svc.ApplyPurchase(ctx, "POS-ERIN", "ORD-1", 200, "")
		require.NoError(t, err)

		// Drain the account below the purchase totals, as a manual
		// adjustment flow would.
		err = db.Model(&dao.LoyaltyAccount{}).
			Where("id = ?", account.ID).
			Updates(map[string]interface{}{
				"current_points": 5,
				"total_points":   5,
				"total_spent":    50.0,
			}).Error
		require.NoError(t, err)

		_, err = svc.ReversePurchase(ctx, "POS-ERIN", "ORD-1")
		require.NoError(t, err)

		refreshed, err := svc.GetAccount(ctx, user.ID)
		require.NoError(t, err)
		require.Zero(t, refreshed.TotalPoints)
		require.Zero(t, refreshed.CurrentPoints)
		require.Zero(t, refreshed.TotalSpent)
		require.Zero(t, refreshed.VisitCount)
	})
}

func TestTierFollowsLifetimeSpent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createTestUser(t, db, "frank@example.com")
	linkTestAccount(t, db, user.ID, "POS-FRANK")
	svc := newLoyaltyService(db)

	steps := []struct {
		orderRef string
		amount   float64
		tier     domain.LoyaltyTier
	}{
		{"ORD-1", 200, domain.TierBronze},
		{"ORD-2", 400, domain.TierSilver},
		{"ORD-3", 500, domain.TierGold},
		{"ORD-4", 1000, domain.TierPlatinum},
	}

	for _, step := range steps {
		_, err := svc.ApplyPurchase(ctx, "POS-FRANK", step.orderRef, step.amount, "")
		require.NoError(t, err)

		account, err := svc.GetAccount(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, step.tier, account.Tier, "after order %v", step.orderRef)
	}
}
