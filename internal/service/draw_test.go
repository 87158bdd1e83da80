package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

func newDrawService(db *gorm.DB, seed int64) *DrawService {
	return NewDrawService(
		repository.NewDrawRepository(dao.NewDrawDAO(db)),
		time.UTC,
		rand.New(rand.NewSource(seed)),
	)
}

// scanToday rotates today's code once and records a scan for each user.
func scanToday(t *testing.T, db *gorm.DB, userIDs ...uint) {
	t.Helper()

	ctx := context.Background()
	svc := newQRCodeService(db)

	code, err := svc.RotateDailyCode(ctx, time.Now())
	require.NoError(t, err)

	for _, userID := range userIDs {
		result, err := svc.Scan(ctx, userID, code.Code)
		require.NoError(t, err)
		require.True(t, result.IsFirstScan)
	}
}

func TestPerformDraw(t *testing.T) {
	ctx := context.Background()

	t.Run("draws distinct winners from the week's scanners", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db, 7)

		alice := createTestUser(t, db, "alice@example.com")
		bob := createTestUser(t, db, "bob@example.com")
		carol := createTestUser(t, db, "carol@example.com")
		createTestUser(t, db, "lurker@example.com")

		scanToday(t, db, alice.ID, bob.ID, carol.ID)

		year, week := svc.CurrentPeriod(time.Now())
		draw, err := svc.PerformDraw(ctx, year, week, 2, nil)
		require.NoError(t, err)
		require.True(t, draw.Completed)
		require.Equal(t, 3, draw.TotalParticipants)
		require.Equal(t, 3, draw.TotalScans)
		require.Len(t, draw.Winners, 2)

		scanners := map[uint]bool{alice.ID: true, bob.ID: true, carol.ID: true}
		seen := map[uint]bool{}
		for i, winner := range draw.Winners {
			require.Equal(t, i+1, winner.Position)
			require.Equal(t, domain.DefaultDrawPrizes[i], winner.Prize)
			require.True(t, scanners[winner.UserID])
			require.False(t, seen[winner.UserID])
			seen[winner.UserID] = true
		}
	})

	t.Run("runs at most once per week", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db, 7)
		user := createTestUser(t, db, "repeat@example.com")

		scanToday(t, db, user.ID)

		year, week := svc.CurrentPeriod(time.Now())
		_, err := svc.PerformDraw(ctx, year, week, 1, nil)
		require.NoError(t, err)

		_, err = svc.PerformDraw(ctx, year, week, 1, nil)
		require.ErrorIs(t, err, ErrDrawAlreadyCompleted)
	})

	t.Run("completes with zero winners when nobody scanned", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db, 7)

		year, week := svc.CurrentPeriod(time.Now())
		draw, err := svc.PerformDraw(ctx, year, week, 3, nil)
		require.NoError(t, err)
		require.True(t, draw.Completed)
		require.Zero(t, draw.TotalParticipants)
		require.Empty(t, draw.Winners)
	})

	t.Run("custom prizes override the default table", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db, 7)
		user := createTestUser(t, db, "custom@example.com")

		scanToday(t, db, user.ID)

		year, week := svc.CurrentPeriod(time.Now())
		draw, err := svc.PerformDraw(ctx, year, week, 1, []string{"Maillot dédicacé"})
		require.NoError(t, err)
		require.Len(t, draw.Winners, 1)
		require.Equal(t, "Maillot dédicacé", draw.Winners[0].Prize)
	})
}

func TestClaimPrize(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newDrawService(db, 7)
	user := createTestUser(t, db, "claimer@example.com")

	scanToday(t, db, user.ID)

	year, week := svc.CurrentPeriod(time.Now())
	draw, err := svc.PerformDraw(ctx, year, week, 1, nil)
	require.NoError(t, err)
	require.Len(t, draw.Winners, 1)

	claimed, err := svc.ClaimPrize(ctx, draw.Winners[0].ID)
	require.NoError(t, err)
	require.True(t, claimed.Claimed)
	require.NotNil(t, claimed.ClaimedAt)

	_, err = svc.ClaimPrize(ctx, draw.Winners[0].ID)
	require.ErrorIs(t, err, ErrPrizeAlreadyClaimed)

	_, err = svc.ClaimPrize(ctx, 9999)
	require.ErrorIs(t, err, ErrWinnerNotFound)
}

func TestWeekWindow(t *testing.T) {
	db := newTestDB(t)
	svc := newDrawService(db, 1)

	ctx := context.Background()
	year, week := svc.CurrentPeriod(time.Now())

	draw, err := svc.GetOrCreateDraw(ctx, year, week)
	require.NoError(t, err)
	require.Equal(t, time.Monday, draw.WindowStart.Weekday())
	require.Equal(t, 7*24*time.Hour, draw.WindowEnd.Sub(draw.WindowStart))
	require.False(t, draw.WindowStart.After(time.Now()))
	require.True(t, draw.WindowEnd.After(time.Now()))
}
