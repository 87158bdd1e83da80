package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

func createTestMatch(t *testing.T, db *gorm.DB, kickoff time.Time) domain.Match {
	t.Helper()

	repo := repository.NewMatchRepository(dao.NewMatchDAO(db))
	match, err := repo.CreateMatch(context.Background(), domain.Match{
		HomeTeam: "Le Stade FC",
		AwayTeam: "Les Visiteurs",
		Kickoff:  kickoff,
	})
	require.NoError(t, err)

	return match
}

func TestScoreMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("grades exact, correct winner and miss", func(t *testing.T) {
		db := newTestDB(t)
		matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))
		rewardRepo := repository.NewRewardRepository(dao.NewRewardDAO(db))
		svc := NewScoringService(matchRepo)

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		exact := createTestUser(t, db, "exact@example.com")
		winner := createTestUser(t, db, "winner@example.com")
		miss := createTestUser(t, db, "miss@example.com")

		_, err := matchRepo.UpsertPrediction(ctx, exact.ID, match.ID, 2, 1)
		require.NoError(t, err)
		_, err = matchRepo.UpsertPrediction(ctx, winner.ID, match.ID, 3, 2)
		require.NoError(t, err)
		_, err = matchRepo.UpsertPrediction(ctx, miss.ID, match.ID, 1, 1)
		require.NoError(t, err)

		summary, err := svc.ScoreMatch(ctx, match.ID, 2, 1)
		require.NoError(t, err)
		require.Equal(t, 3, summary.TotalScored)
		require.Equal(t, 1, summary.ExactCount)

		expectations := []struct {
			userID uint
			points int
			exact  bool
		}{
			{exact.ID, 5, true},
			{winner.ID, 3, false},
			{miss.ID, 0, false},
		}
		for _, want := range expectations {
			predictions, err := matchRepo.ListPredictionsByUser(ctx, want.userID)
			require.NoError(t, err)
			require.Len(t, predictions, 1)
			require.Equal(t, want.points, predictions[0].Points)
			require.Equal(t, want.exact, predictions[0].IsExact)
			require.NotNil(t, predictions[0].ScoredAt)
		}

		rewards, err := rewardRepo.ListByUser(ctx, exact.ID)
		require.NoError(t, err)
		require.Len(t, rewards, 1)
		require.Equal(t, domain.RewardFreeItem, rewards[0].Kind)
		require.Equal(t, match.ID, rewards[0].MatchID)

		rewards, err = rewardRepo.ListByUser(ctx, winner.ID)
		require.NoError(t, err)
		require.Empty(t, rewards)
	})

	t.Run("rescoring the same result is a no-op", func(t *testing.T) {
		db := newTestDB(t)
		matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))
		rewardRepo := repository.NewRewardRepository(dao.NewRewardDAO(db))
		svc := NewScoringService(matchRepo)

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		user := createTestUser(t, db, "rescore@example.com")
		_, err := matchRepo.UpsertPrediction(ctx, user.ID, match.ID, 2, 0)
		require.NoError(t, err)

		first, err := svc.ScoreMatch(ctx, match.ID, 2, 0)
		require.NoError(t, err)
		require.Equal(t, 1, first.TotalScored)

		second, err := svc.ScoreMatch(ctx, match.ID, 2, 0)
		require.NoError(t, err)
		require.Zero(t, second.TotalScored)
		require.Zero(t, second.ExactCount)

		rewards, err := rewardRepo.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, rewards, 1)
	})

	t.Run("rejects a conflicting result for a finished match", func(t *testing.T) {
		db := newTestDB(t)
		matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))
		svc := NewScoringService(matchRepo)

		match := createTestMatch(t, db, time.Now().Add(time.Hour))

		_, err := svc.ScoreMatch(ctx, match.ID, 1, 0)
		require.NoError(t, err)

		_, err = svc.ScoreMatch(ctx, match.ID, 2, 0)
		require.ErrorIs(t, err, ErrMatchAlreadyFinished)
	})

	t.Run("prediction made after scoring stays final", func(t *testing.T) {
		db := newTestDB(t)
		matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))
		svc := NewScoringService(matchRepo)

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		user := createTestUser(t, db, "late@example.com")
		_, err := matchRepo.UpsertPrediction(ctx, user.ID, match.ID, 1, 0)
		require.NoError(t, err)

		_, err = svc.ScoreMatch(ctx, match.ID, 1, 0)
		require.NoError(t, err)

		_, err = matchRepo.UpsertPrediction(ctx, user.ID, match.ID, 4, 4)
		require.ErrorIs(t, err, repository.ErrPredictionFinal)
	})
}
