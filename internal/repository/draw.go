package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

var (
	ErrDrawNotFound         = dao.ErrDrawNotFound
	ErrDrawAlreadyCompleted = dao.ErrDrawAlreadyCompleted
	ErrWinnerNotFound       = dao.ErrWinnerNotFound
	ErrPrizeAlreadyClaimed  = dao.ErrPrizeAlreadyClaimed
)

type DrawDAO interface {
	GetOrCreate(ctx context.Context, year, period int, drawType string, windowStart, windowEnd time.Time) (dao.WeeklyDraw, error)
	GetByID(ctx context.Context, id uint) (dao.WeeklyDraw, error)
	EligibleParticipants(ctx context.Context, windowStart, windowEnd time.Time) ([]dao.ParticipantRow, error)
	CompleteDraw(ctx context.Context, drawID uint, winners []dao.DrawWinner, totalParticipants, totalScans int) error
	ListWinners(ctx context.Context, drawID uint) ([]dao.DrawWinner, error)
	ClaimPrize(ctx context.Context, winnerID uint) (dao.DrawWinner, error)
}

type DrawRepository struct {
	dao DrawDAO
}

func NewDrawRepository(dao DrawDAO) *DrawRepository {
	return &DrawRepository{
		dao: dao,
	}
}

func (r *DrawRepository) GetOrCreate(ctx context.Context, year, period int, drawType domain.DrawType, windowStart, windowEnd time.Time) (domain.WeeklyDraw, error) {
	draw, err := r.dao.GetOrCreate(ctx, year, period, string(drawType), windowStart, windowEnd)
	if err != nil {
		return domain.WeeklyDraw{}, fmt.Errorf("r.dao.GetOrCreate -> %w", err)
	}

	return r.drawDaoToDomain(draw), nil
}

func (r *DrawRepository) GetByID(ctx context.Context, id uint) (domain.WeeklyDraw, error) {
	draw, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.WeeklyDraw{}, fmt.Errorf("r.dao.GetByID -> %w", err)
	}

	return r.drawDaoToDomain(draw), nil
}

func (r *DrawRepository) EligibleParticipants(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.DrawParticipant, error) {
	rows, err := r.dao.EligibleParticipants(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("r.dao.EligibleParticipants -> %w", err)
	}

	participants := make([]domain.DrawParticipant, len(rows))
	for i, row := range rows {
		participants[i] = domain.DrawParticipant{
			UserID:    row.UserID,
			ScanCount: row.ScanCount,
		}
	}

	return participants, nil
}

func (r *DrawRepository) CompleteDraw(ctx context.Context, drawID uint, winners []domain.DrawWinner, totalParticipants, totalScans int) error {
	winnersDAO := make([]dao.DrawWinner, len(winners))
	for i, w := range winners {
		winnersDAO[i] = dao.DrawWinner{
			UserID:    w.UserID,
			Position:  w.Position,
			Prize:     w.Prize,
			ScanCount: w.ScanCount,
		}
	}

	if err := r.dao.CompleteDraw(ctx, drawID, winnersDAO, totalParticipants, totalScans); err != nil {
		return fmt.Errorf("r.dao.CompleteDraw -> %w", err)
	}

	return nil
}

func (r *DrawRepository) ListWinners(ctx context.Context, drawID uint) ([]domain.DrawWinner, error) {
	winnersDAO, err := r.dao.ListWinners(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListWinners -> %w", err)
	}

	winners := make([]domain.DrawWinner, len(winnersDAO))
	for i, w := range winnersDAO {
		winners[i] = r.winnerDaoToDomain(w)
	}

	return winners, nil
}

func (r *DrawRepository) ClaimPrize(ctx context.Context, winnerID uint) (domain.DrawWinner, error) {
	winner, err := r.dao.ClaimPrize(ctx, winnerID)
	if err != nil {
		return domain.DrawWinner{}, fmt.Errorf("r.dao.ClaimPrize -> %w", err)
	}

	return r.winnerDaoToDomain(winner), nil
}

func (r *DrawRepository) drawDaoToDomain(d dao.WeeklyDraw) domain.WeeklyDraw {
	return domain.WeeklyDraw{
		ID:                d.ID,
		Year:              d.Year,
		Period:            d.Period,
		Type:              domain.DrawType(d.Type),
		WindowStart:       d.WindowStart,
		WindowEnd:         d.WindowEnd,
		Completed:         d.Completed,
		DrawnAt:           d.DrawnAt,
		TotalParticipants: d.TotalParticipants,
		TotalScans:        d.TotalScans,
		CreatedAt:         d.CreatedAt,
	}
}

func (r *DrawRepository) winnerDaoToDomain(w dao.DrawWinner) domain.DrawWinner {
	return domain.DrawWinner{
		ID:        w.ID,
		DrawID:    w.DrawID,
		UserID:    w.UserID,
		Position:  w.Position,
		Prize:     w.Prize,
		ScanCount: w.ScanCount,
		Claimed:   w.Claimed,
		ClaimedAt: w.ClaimedAt,
	}
}
