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

func newMatchService(db *gorm.DB) *MatchService {
	return NewMatchService(repository.NewMatchRepository(dao.NewMatchDAO(db)))
}

func domainPlayer(name string, number int) domain.Player {
	return domain.Player{
		Name:   name,
		Number: number,
		Team:   "Le Stade FC",
	}
}

func TestSubmitPrediction(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts and updates before kickoff", func(t *testing.T) {
		db := newTestDB(t)
		svc := newMatchService(db)
		user := createTestUser(t, db, "predictor@example.com")
		match := createTestMatch(t, db, time.Now().Add(time.Hour))

		prediction, err := svc.SubmitPrediction(ctx, user.ID, match.ID, 1, 0)
		require.NoError(t, err)
		require.Equal(t, 1, prediction.HomeScore)

		updated, err := svc.SubmitPrediction(ctx, user.ID, match.ID, 2, 1)
		require.NoError(t, err)
		require.Equal(t, prediction.ID, updated.ID)
		require.Equal(t, 2, updated.HomeScore)

		predictions, err := svc.ListPredictions(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, predictions, 1)
	})

	t.Run("rejects a locked match", func(t *testing.T) {
		db := newTestDB(t)
		svc := newMatchService(db)
		user := createTestUser(t, db, "locked@example.com")
		match := createTestMatch(t, db, time.Now().Add(time.Hour))

		require.NoError(t, svc.LockMatch(ctx, match.ID))

		_, err := svc.SubmitPrediction(ctx, user.ID, match.ID, 1, 0)
		require.ErrorIs(t, err, ErrPredictionsClosed)
	})

	t.Run("rejects after kickoff", func(t *testing.T) {
		db := newTestDB(t)
		svc := newMatchService(db)
		user := createTestUser(t, db, "kickedoff@example.com")
		match := createTestMatch(t, db, time.Now().Add(-time.Minute))

		_, err := svc.SubmitPrediction(ctx, user.ID, match.ID, 1, 0)
		require.ErrorIs(t, err, ErrPredictionsClosed)
	})

	t.Run("rejects an unknown match", func(t *testing.T) {
		db := newTestDB(t)
		svc := newMatchService(db)
		user := createTestUser(t, db, "nomatch2@example.com")

		_, err := svc.SubmitPrediction(ctx, user.ID, 9999, 1, 0)
		require.ErrorIs(t, err, ErrMatchNotFound)
	})
}

func TestSetCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown players", func(t *testing.T) {
		db := newTestDB(t)
		svc := newMatchService(db)
		match := createTestMatch(t, db, time.Now().Add(time.Hour))

		player, err := svc.CreatePlayer(ctx, domainPlayer("Payet", 10))
		require.NoError(t, err)

		err = svc.SetCandidates(ctx, match.ID, []uint{player.ID, 9999})
		require.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("replaces the previous set", func(t *testing.T) {
		db := newTestDB(t)
		svc := newMatchService(db)
		match := createTestMatch(t, db, time.Now().Add(time.Hour))

		first, err := svc.CreatePlayer(ctx, domainPlayer("Payet", 10))
		require.NoError(t, err)
		second, err := svc.CreatePlayer(ctx, domainPlayer("Aubameyang", 9))
		require.NoError(t, err)

		require.NoError(t, svc.SetCandidates(ctx, match.ID, []uint{first.ID}))
		require.NoError(t, svc.SetCandidates(ctx, match.ID, []uint{second.ID}))

		loaded, err := svc.GetMatch(ctx, match.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Candidates, 1)
		require.Equal(t, second.ID, loaded.Candidates[0].ID)
	})
}
