package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

func newRewardService(db *gorm.DB) *RewardService {
	return NewRewardService(repository.NewRewardRepository(dao.NewRewardDAO(db)))
}

// earnReward scores an exact prediction so the user ends up with one
// redeemable reward code.
func earnReward(t *testing.T, db *gorm.DB, userID uint) string {
	t.Helper()

	ctx := context.Background()
	matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))

	match := createTestMatch(t, db, time.Now().Add(time.Hour))
	_, err := matchRepo.UpsertPrediction(ctx, userID, match.ID, 2, 1)
	require.NoError(t, err)

	_, err = NewScoringService(matchRepo).ScoreMatch(ctx, match.ID, 2, 1)
	require.NoError(t, err)

	rewards, err := repository.NewRewardRepository(dao.NewRewardDAO(db)).ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rewards, 1)

	return rewards[0].Code
}

func TestRedeemReward(t *testing.T) {
	ctx := context.Background()

	t.Run("redeems once and records the staff member", func(t *testing.T) {
		db := newTestDB(t)
		svc := newRewardService(db)
		user := createTestUser(t, db, "earned@example.com")
		staff := createTestUser(t, db, "staff@example.com")

		code := earnReward(t, db, user.ID)

		reward, err := svc.Redeem(ctx, code, staff.ID)
		require.NoError(t, err)
		require.True(t, reward.IsRedeemed)
		require.NotNil(t, reward.RedeemedBy)
		require.Equal(t, staff.ID, *reward.RedeemedBy)

		_, err = svc.Redeem(ctx, code, staff.ID)
		require.ErrorIs(t, err, ErrRewardAlreadyRedeemed)
	})

	t.Run("rejects an expired code", func(t *testing.T) {
		db := newTestDB(t)
		svc := newRewardService(db)
		user := createTestUser(t, db, "expired@example.com")
		staff := createTestUser(t, db, "staff2@example.com")

		code := earnReward(t, db, user.ID)

		err := db.Model(&dao.RewardCode{}).
			Where("code = ?", code).
			Update("expires_at", time.Now().Add(-time.Hour)).Error
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, code, staff.ID)
		require.ErrorIs(t, err, ErrRewardExpired)
	})

	t.Run("an unknown code is not found", func(t *testing.T) {
		db := newTestDB(t)
		svc := newRewardService(db)
		staff := createTestUser(t, db, "staff3@example.com")

		_, err := svc.Redeem(ctx, "NOPE1234", staff.ID)
		require.ErrorIs(t, err, ErrRewardNotFound)
	})
}
