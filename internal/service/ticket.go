package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/pkg/shortcode"
	"github.com/lestade/fanzone-api/internal/repository"
)

var (
	ErrTicketNotFound        = repository.ErrTicketNotFound
	ErrTicketNotWinning      = repository.ErrTicketNotWinning
	ErrTicketAlreadyRedeemed = repository.ErrTicketAlreadyRedeemed
	ErrNoCandidates          = errors.New("no candidate scorers configured for this match")
)

// Ticket code collisions are regenerated up to this many times before the
// issuance fails.
const ticketCodeRetries = 5

type TicketRepository interface {
	Create(ctx context.Context, ticket domain.ScorerTicket) (domain.ScorerTicket, error)
	FindByCode(ctx context.Context, code string) (domain.ScorerTicket, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.ScorerTicket, error)
	ListUncheckedByMatch(ctx context.Context, matchID uint) ([]domain.ScorerTicket, error)
	ApplyResolution(ctx context.Context, outcomes []repository.TicketOutcome) (int, error)
	Redeem(ctx context.Context, code string) (domain.ScorerTicket, error)
}

type TicketMatchRepository interface {
	FindNextOpenMatch(ctx context.Context) (domain.Match, error)
	GetCandidateIDs(ctx context.Context, matchID uint) ([]uint, error)
	GetScorerIDs(ctx context.Context, matchID uint) ([]uint, error)
}

type TicketService struct {
	repo    TicketRepository
	matches TicketMatchRepository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewTicketService(repo TicketRepository, matches TicketMatchRepository, rng *rand.Rand) *TicketService {
	return &TicketService{
		repo:    repo,
		matches: matches,
		rng:     rng,
	}
}

// IssueTicket binds a new unchecked ticket to one uniformly chosen
// candidate scorer of the match. An empty candidate set is an invalid state.
func (s *TicketService) IssueTicket(ctx context.Context, matchID uint, userID *uint) (domain.ScorerTicket, error) {
	candidateIDs, err := s.matches.GetCandidateIDs(ctx, matchID)
	if err != nil {
		return domain.ScorerTicket{}, fmt.Errorf("s.matches.GetCandidateIDs -> %w", err)
	}
	if len(candidateIDs) == 0 {
		return domain.ScorerTicket{}, ErrNoCandidates
	}

	playerID := candidateIDs[s.intn(len(candidateIDs))]

	for attempt := 0; attempt < ticketCodeRetries; attempt++ {
		code, err := shortcode.New(shortcode.DefaultLength)
		if err != nil {
			return domain.ScorerTicket{}, fmt.Errorf("shortcode.New -> %w", err)
		}

		ticket, err := s.repo.Create(ctx, domain.ScorerTicket{
			Code:     code,
			UserID:   userID,
			MatchID:  matchID,
			PlayerID: playerID,
		})
		if err != nil {
			if errors.Is(err, repository.ErrTicketCodeExists) {
				continue
			}

			return domain.ScorerTicket{}, fmt.Errorf("s.repo.Create -> %w", err)
		}

		return ticket, nil
	}

	return domain.ScorerTicket{}, fmt.Errorf("ticket code generation exhausted %d attempts", ticketCodeRetries)
}

// OnPurchaseApplied issues one ticket for the next open match after a
// purchase lands. Best effort: no open match or no candidates just logs.
func (s *TicketService) OnPurchaseApplied(ctx context.Context, result domain.PurchaseResult) {
	match, err := s.matches.FindNextOpenMatch(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoOpenMatch) {
			zap.L().Info("no open match for purchase ticket", zap.Uint("user_id", result.UserID))

			return
		}

		zap.L().Error("finding next open match for purchase ticket failed", zap.Error(err))

		return
	}

	userID := result.UserID
	ticket, err := s.IssueTicket(ctx, match.ID, &userID)
	if err != nil {
		if errors.Is(err, ErrNoCandidates) {
			zap.L().Info("no candidate scorers for purchase ticket",
				zap.Uint("match_id", match.ID),
				zap.Uint("user_id", result.UserID))

			return
		}

		zap.L().Error("issuing purchase ticket failed",
			zap.Uint("match_id", match.ID),
			zap.Uint("user_id", result.UserID),
			zap.Error(err))

		return
	}

	zap.L().Info("scorer ticket issued for purchase",
		zap.Uint("match_id", match.ID),
		zap.Uint("user_id", result.UserID),
		zap.String("code", ticket.Code))
}

// ResolveMatch checks every still-unchecked ticket of the match against the
// recorded scorers. Winners get a prize drawn from the weighted table.
// Already-checked tickets are never revisited, so a second run after the
// scorers are recorded processes zero rows.
func (s *TicketService) ResolveMatch(ctx context.Context, matchID uint) (domain.TicketResolution, error) {
	scorerIDs, err := s.matches.GetScorerIDs(ctx, matchID)
	if err != nil {
		return domain.TicketResolution{}, fmt.Errorf("s.matches.GetScorerIDs -> %w", err)
	}

	scorers := make(map[uint]struct{}, len(scorerIDs))
	for _, id := range scorerIDs {
		scorers[id] = struct{}{}
	}

	tickets, err := s.repo.ListUncheckedByMatch(ctx, matchID)
	if err != nil {
		return domain.TicketResolution{}, fmt.Errorf("s.repo.ListUncheckedByMatch -> %w", err)
	}

	resolution := domain.TicketResolution{MatchID: matchID}
	if len(tickets) == 0 {
		return resolution, nil
	}

	outcomes := make([]repository.TicketOutcome, 0, len(tickets))
	for _, ticket := range tickets {
		outcome := repository.TicketOutcome{TicketID: ticket.ID}

		if _, won := scorers[ticket.PlayerID]; won {
			prize := s.pickPrize(domain.DefaultTicketPrizes)
			outcome.HasWon = true
			outcome.PrizeLabel = prize.Label
			outcome.PrizeValue = prize.Points
			resolution.WinnersCount++
		}

		outcomes = append(outcomes, outcome)
	}

	checked, err := s.repo.ApplyResolution(ctx, outcomes)
	if err != nil {
		return domain.TicketResolution{}, fmt.Errorf("s.repo.ApplyResolution -> %w", err)
	}

	resolution.TotalChecked = checked

	return resolution, nil
}

func (s *TicketService) Redeem(ctx context.Context, code string) (domain.ScorerTicket, error) {
	ticket, err := s.repo.Redeem(ctx, code)
	if err != nil {
		return domain.ScorerTicket{}, fmt.Errorf("s.repo.Redeem -> %w", err)
	}

	return ticket, nil
}

func (s *TicketService) GetTicket(ctx context.Context, code string) (domain.ScorerTicket, error) {
	ticket, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return domain.ScorerTicket{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	return ticket, nil
}

func (s *TicketService) ListUserTickets(ctx context.Context, userID uint) ([]domain.ScorerTicket, error) {
	tickets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByUser -> %w", err)
	}

	return tickets, nil
}

// pickPrize draws one prize proportionally to the table weights.
func (s *TicketService) pickPrize(prizes []domain.TicketPrize) domain.TicketPrize {
	total := 0
	for _, prize := range prizes {
		total += prize.Weight
	}

	roll := s.intn(total)
	for _, prize := range prizes {
		if roll < prize.Weight {
			return prize
		}
		roll -= prize.Weight
	}

	return prizes[len(prizes)-1]
}

func (s *TicketService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Intn(n)
}
