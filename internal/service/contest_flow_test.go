package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

// TestMatchDayFlow walks one customer through a full match day: scan the
// daily code, predict the score, earn a scorer ticket with a purchase, then
// collect everything once the result is in.
func TestMatchDayFlow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))
	loyaltySvc := NewLoyaltyService(repository.NewLoyaltyRepository(dao.NewLoyaltyDAO(db)))
	matchSvc := NewMatchService(matchRepo)
	scoringSvc := NewScoringService(matchRepo)
	ticketSvc := NewTicketService(
		repository.NewTicketRepository(dao.NewTicketDAO(db)),
		matchRepo,
		rand.New(rand.NewSource(42)),
	)
	qrcodeSvc := newQRCodeService(db)
	drawSvc := newDrawService(db, 42)
	rewardSvc := newRewardService(db)

	loyaltySvc.SetPurchaseHook(ticketSvc)

	user := createTestUser(t, db, "regular@example.com")
	linkTestAccount(t, db, user.ID, "POS-REGULAR")

	// Tonight's match, with one candidate scorer so the ticket is a
	// guaranteed win once he scores.
	match := createTestMatch(t, db, time.Now().Add(2*time.Hour))
	scorer, err := matchSvc.CreatePlayer(ctx, domainPlayer("Payet", 10))
	require.NoError(t, err)
	require.NoError(t, matchSvc.SetCandidates(ctx, match.ID, []uint{scorer.ID}))

	// The customer scans the table QR code over lunch.
	daily, err := qrcodeSvc.RotateDailyCode(ctx, time.Now())
	require.NoError(t, err)
	scan, err := qrcodeSvc.Scan(ctx, user.ID, daily.Code)
	require.NoError(t, err)
	require.True(t, scan.IsFirstScan)

	// Predicts 2-0 and pays the bill, which issues a scorer ticket.
	_, err = matchSvc.SubmitPrediction(ctx, user.ID, match.ID, 2, 0)
	require.NoError(t, err)

	purchase, err := loyaltySvc.ApplyPurchase(ctx, "POS-REGULAR", "ORD-NIGHT", 90, "match night menu")
	require.NoError(t, err)
	require.True(t, purchase.Applied)

	tickets, err := ticketSvc.ListUserTickets(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	// Kickoff: predictions close.
	require.NoError(t, matchSvc.LockMatch(ctx, match.ID))
	_, err = matchSvc.SubmitPrediction(ctx, user.ID, match.ID, 3, 0)
	require.ErrorIs(t, err, ErrPredictionsClosed)

	// Final whistle: 2-0, Payet scored. Scoring grants the exact bonus.
	summary, err := scoringSvc.ScoreMatch(ctx, match.ID, 2, 0)
	require.NoError(t, err)
	require.Equal(t, 1, summary.TotalScored)
	require.Equal(t, 1, summary.ExactCount)

	require.NoError(t, matchSvc.RecordScorers(ctx, match.ID, []uint{scorer.ID}))
	resolution, err := ticketSvc.ResolveMatch(ctx, match.ID)
	require.NoError(t, err)
	require.Equal(t, 1, resolution.TotalChecked)
	require.Equal(t, 1, resolution.WinnersCount)

	// The customer walks away with points, a reward code and a winning
	// ticket, and is in the pool for the weekly draw.
	predictions, err := matchSvc.ListPredictions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	require.Equal(t, 5, predictions[0].Points)

	rewards, err := rewardSvc.ListUserRewards(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rewards, 1)

	tickets, err = ticketSvc.ListUserTickets(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, tickets[0].HasWon)

	year, week := drawSvc.CurrentPeriod(time.Now())
	draw, err := drawSvc.PerformDraw(ctx, year, week, 1, nil)
	require.NoError(t, err)
	require.Len(t, draw.Winners, 1)
	require.Equal(t, user.ID, draw.Winners[0].UserID)
}
