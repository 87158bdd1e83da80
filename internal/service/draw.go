package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
)

var (
	ErrDrawNotFound         = repository.ErrDrawNotFound
	ErrDrawAlreadyCompleted = repository.ErrDrawAlreadyCompleted
	ErrWinnerNotFound       = repository.ErrWinnerNotFound
	ErrPrizeAlreadyClaimed  = repository.ErrPrizeAlreadyClaimed
)

type DrawRepository interface {
	GetOrCreate(ctx context.Context, year, period int, drawType domain.DrawType, windowStart, windowEnd time.Time) (domain.WeeklyDraw, error)
	GetByID(ctx context.Context, id uint) (domain.WeeklyDraw, error)
	EligibleParticipants(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.DrawParticipant, error)
	CompleteDraw(ctx context.Context, drawID uint, winners []domain.DrawWinner, totalParticipants, totalScans int) error
	ListWinners(ctx context.Context, drawID uint) ([]domain.DrawWinner, error)
	ClaimPrize(ctx context.Context, winnerID uint) (domain.DrawWinner, error)
}

type DrawService struct {
	repo DrawRepository
	loc  *time.Location

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDrawService(repo DrawRepository, loc *time.Location, rng *rand.Rand) *DrawService {
	return &DrawService{
		repo: repo,
		loc:  loc,
		rng:  rng,
	}
}

// CurrentPeriod is the ISO year and week the given instant falls in.
func (s *DrawService) CurrentPeriod(now time.Time) (year, week int) {
	return now.In(s.loc).ISOWeek()
}

// GetOrCreateDraw resolves the weekly draw row for an ISO (year, week),
// computing its Monday-to-Monday window deterministically.
func (s *DrawService) GetOrCreateDraw(ctx context.Context, year, week int) (domain.WeeklyDraw, error) {
	start, end := s.weekWindow(year, week)

	draw, err := s.repo.GetOrCreate(ctx, year, week, domain.DrawWeekly, start, end)
	if err != nil {
		return domain.WeeklyDraw{}, fmt.Errorf("s.repo.GetOrCreate -> %w", err)
	}

	return draw, nil
}

func (s *DrawService) GetDraw(ctx context.Context, id uint) (domain.WeeklyDraw, error) {
	draw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.WeeklyDraw{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	draw.Winners, err = s.repo.ListWinners(ctx, id)
	if err != nil {
		return domain.WeeklyDraw{}, fmt.Errorf("s.repo.ListWinners -> %w", err)
	}

	return draw, nil
}

// PerformDraw runs the draw for an ISO (year, week) at most once. The
// eligible pool is everyone with at least one scan inside the window; a
// uniform shuffle picks the winners without replacement. An empty prize
// list falls back to the default table.
func (s *DrawService) PerformDraw(ctx context.Context, year, week, winnerCount int, prizes []string) (domain.WeeklyDraw, error) {
	draw, err := s.GetOrCreateDraw(ctx, year, week)
	if err != nil {
		return domain.WeeklyDraw{}, err
	}
	if draw.Completed {
		return domain.WeeklyDraw{}, ErrDrawAlreadyCompleted
	}

	participants, err := s.repo.EligibleParticipants(ctx, draw.WindowStart, draw.WindowEnd)
	if err != nil {
		return domain.WeeklyDraw{}, fmt.Errorf("s.repo.EligibleParticipants -> %w", err)
	}

	if len(prizes) == 0 {
		prizes = domain.DefaultDrawPrizes
	}
	if winnerCount <= 0 {
		winnerCount = len(prizes)
	}

	totalScans := 0
	for _, participant := range participants {
		totalScans += participant.ScanCount
	}

	s.shuffle(participants)

	if winnerCount > len(participants) {
		winnerCount = len(participants)
	}

	winners := make([]domain.DrawWinner, winnerCount)
	for i := 0; i < winnerCount; i++ {
		prize := prizes[len(prizes)-1]
		if i < len(prizes) {
			prize = prizes[i]
		}

		winners[i] = domain.DrawWinner{
			UserID:    participants[i].UserID,
			Position:  i + 1,
			Prize:     prize,
			ScanCount: participants[i].ScanCount,
		}
	}

	err = s.repo.CompleteDraw(ctx, draw.ID, winners, len(participants), totalScans)
	if err != nil {
		return domain.WeeklyDraw{}, fmt.Errorf("s.repo.CompleteDraw -> %w", err)
	}

	return s.GetDraw(ctx, draw.ID)
}

func (s *DrawService) ListWinners(ctx context.Context, drawID uint) ([]domain.DrawWinner, error) {
	winners, err := s.repo.ListWinners(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListWinners -> %w", err)
	}

	return winners, nil
}

func (s *DrawService) ClaimPrize(ctx context.Context, winnerID uint) (domain.DrawWinner, error) {
	winner, err := s.repo.ClaimPrize(ctx, winnerID)
	if err != nil {
		return domain.DrawWinner{}, fmt.Errorf("s.repo.ClaimPrize -> %w", err)
	}

	return winner, nil
}

// weekWindow is the [Monday 00:00, next Monday 00:00) range of an ISO week.
// Week 1 is the week containing January 4th.
func (s *DrawService) weekWindow(year, week int) (start, end time.Time) {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, s.loc)
	daysSinceMonday := (int(jan4.Weekday()) + 6) % 7
	firstMonday := jan4.AddDate(0, 0, -daysSinceMonday)

	start = firstMonday.AddDate(0, 0, (week-1)*7)
	end = start.AddDate(0, 0, 7)

	return start, end
}

// shuffle is a Fisher-Yates permutation over the participant slice.
func (s *DrawService) shuffle(participants []domain.DrawParticipant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rng.Shuffle(len(participants), func(i, j int) {
		participants[i], participants[j] = participants[j], participants[i]
	})
}
