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

func newTicketService(db *gorm.DB, seed int64) *TicketService {
	return NewTicketService(
		repository.NewTicketRepository(dao.NewTicketDAO(db)),
		repository.NewMatchRepository(dao.NewMatchDAO(db)),
		rand.New(rand.NewSource(seed)),
	)
}

func createTestPlayers(t *testing.T, db *gorm.DB, matchID uint, names ...string) []domain.Player {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewMatchRepository(dao.NewMatchDAO(db))

	players := make([]domain.Player, len(names))
	ids := make([]uint, len(names))
	for i, name := range names {
		player, err := repo.CreatePlayer(ctx, domain.Player{
			Name:   name,
			Number: i + 7,
			Team:   "Le Stade FC",
		})
		require.NoError(t, err)
		players[i] = player
		ids[i] = player.ID
	}

	require.NoError(t, repo.SetCandidates(ctx, matchID, ids))

	return players
}

func TestIssueTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("binds the ticket to one of the candidates", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 1)

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		players := createTestPlayers(t, db, match.ID, "Payet", "Aubameyang", "Greenwood")
		user := createTestUser(t, db, "ticket@example.com")

		ticket, err := svc.IssueTicket(ctx, match.ID, &user.ID)
		require.NoError(t, err)
		require.Len(t, ticket.Code, 8)
		require.Equal(t, match.ID, ticket.MatchID)
		require.False(t, ticket.IsChecked)
		require.False(t, ticket.HasWon)

		candidateIDs := map[uint]bool{}
		for _, p := range players {
			candidateIDs[p.ID] = true
		}
		require.True(t, candidateIDs[ticket.PlayerID])
	})

	t.Run("fails when the match has no candidates", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 1)

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		user := createTestUser(t, db, "nocand@example.com")

		_, err := svc.IssueTicket(ctx, match.ID, &user.ID)
		require.ErrorIs(t, err, ErrNoCandidates)
	})
}

func TestResolveMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("checks every ticket once and awards weighted prizes", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 7)
		matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		players := createTestPlayers(t, db, match.ID, "Payet", "Aubameyang")
		user := createTestUser(t, db, "resolve@example.com")

		for i := 0; i < 5; i++ {
			_, err := svc.IssueTicket(ctx, match.ID, &user.ID)
			require.NoError(t, err)
		}

		// Only the first player scored.
		require.NoError(t, matchRepo.RecordScorers(ctx, match.ID, []uint{players[0].ID}))

		first, err := svc.ResolveMatch(ctx, match.ID)
		require.NoError(t, err)
		require.Equal(t, 5, first.TotalChecked)

		second, err := svc.ResolveMatch(ctx, match.ID)
		require.NoError(t, err)
		require.Zero(t, second.TotalChecked)
		require.Zero(t, second.WinnersCount)

		tickets, err := svc.ListUserTickets(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, tickets, 5)

		winners := 0
		validLabels := map[string]bool{}
		validValues := map[int]bool{}
		for _, prize := range domain.DefaultTicketPrizes {
			validLabels[prize.Label] = true
			validValues[prize.Points] = true
		}

		for _, ticket := range tickets {
			require.True(t, ticket.IsChecked)
			if ticket.HasWon {
				winners++
				require.Equal(t, players[0].ID, ticket.PlayerID)
				require.True(t, validLabels[ticket.PrizeLabel])
				require.True(t, validValues[ticket.PrizeValue])
			} else {
				require.Empty(t, ticket.PrizeLabel)
			}
		}
		require.Equal(t, first.WinnersCount, winners)
	})

	t.Run("a goalless match produces no winners", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 3)
		matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		createTestPlayers(t, db, match.ID, "Payet")
		user := createTestUser(t, db, "goalless@example.com")

		_, err := svc.IssueTicket(ctx, match.ID, &user.ID)
		require.NoError(t, err)

		require.NoError(t, matchRepo.RecordScorers(ctx, match.ID, nil))

		resolution, err := svc.ResolveMatch(ctx, match.ID)
		require.NoError(t, err)
		require.Equal(t, 1, resolution.TotalChecked)
		require.Zero(t, resolution.WinnersCount)
	})
}

func TestRedeemTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("a winning ticket redeems exactly once", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 1)
		matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		players := createTestPlayers(t, db, match.ID, "Payet")
		user := createTestUser(t, db, "winner-ticket@example.com")

		issued, err := svc.IssueTicket(ctx, match.ID, &user.ID)
		require.NoError(t, err)

		require.NoError(t, matchRepo.RecordScorers(ctx, match.ID, []uint{players[0].ID}))
		_, err = svc.ResolveMatch(ctx, match.ID)
		require.NoError(t, err)

		redeemed, err := svc.Redeem(ctx, issued.Code)
		require.NoError(t, err)
		require.True(t, redeemed.IsRedeemed)
		require.NotNil(t, redeemed.RedeemedAt)

		_, err = svc.Redeem(ctx, issued.Code)
		require.ErrorIs(t, err, ErrTicketAlreadyRedeemed)
	})

	t.Run("a losing ticket cannot be redeemed", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 1)
		matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		createTestPlayers(t, db, match.ID, "Payet")
		user := createTestUser(t, db, "loser-ticket@example.com")

		issued, err := svc.IssueTicket(ctx, match.ID, &user.ID)
		require.NoError(t, err)

		// Unchecked tickets cannot be redeemed either.
		_, err = svc.Redeem(ctx, issued.Code)
		require.ErrorIs(t, err, ErrTicketNotWinning)

		require.NoError(t, matchRepo.RecordScorers(ctx, match.ID, nil))
		_, err = svc.ResolveMatch(ctx, match.ID)
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, issued.Code)
		require.ErrorIs(t, err, ErrTicketNotWinning)
	})

	t.Run("an unknown code is not found", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 1)

		_, err := svc.Redeem(ctx, "NOPE1234")
		require.ErrorIs(t, err, ErrTicketNotFound)
	})
}

func TestOnPurchaseApplied(t *testing.T) {
	ctx := context.Background()

	t.Run("issues one ticket against the next open match", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 1)

		match := createTestMatch(t, db, time.Now().Add(time.Hour))
		createTestPlayers(t, db, match.ID, "Payet", "Aubameyang")
		user := createTestUser(t, db, "hooked@example.com")

		svc.OnPurchaseApplied(ctx, domain.PurchaseResult{
			UserID:      user.ID,
			Applied:     true,
			PointsDelta: 12,
		})

		tickets, err := svc.ListUserTickets(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		require.Equal(t, match.ID, tickets[0].MatchID)
	})

	t.Run("is a no-op when no match is open", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTicketService(db, 1)
		user := createTestUser(t, db, "nomatch@example.com")

		svc.OnPurchaseApplied(ctx, domain.PurchaseResult{UserID: user.ID, Applied: true})

		tickets, err := svc.ListUserTickets(ctx, user.ID)
		require.NoError(t, err)
		require.Empty(t, tickets)
	})
}
