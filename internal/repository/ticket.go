package repository

import (
	"context"
	"fmt"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

var (
	ErrTicketNotFound        = dao.ErrTicketNotFound
	ErrTicketCodeExists      = dao.ErrTicketCodeExists
	ErrTicketNotWinning      = dao.ErrTicketNotWinning
	ErrTicketAlreadyRedeemed = dao.ErrTicketAlreadyRedeemed
)

type TicketDAO interface {
	Insert(ctx context.Context, ticket dao.ScorerTicket) (dao.ScorerTicket, error)
	FindByCode(ctx context.Context, code string) (dao.ScorerTicket, error)
	ListByUser(ctx context.Context, userID uint) ([]dao.ScorerTicket, error)
	ListUncheckedByMatch(ctx context.Context, matchID uint) ([]dao.ScorerTicket, error)
	ApplyResolution(ctx context.Context, outcomes []dao.TicketOutcome) (int, error)
	Redeem(ctx context.Context, code string) (dao.ScorerTicket, error)
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.ScorerTicket) (domain.ScorerTicket, error) {
	created, err := r.dao.Insert(ctx, dao.ScorerTicket{
		Code:     ticket.Code,
		UserID:   ticket.UserID,
		MatchID:  ticket.MatchID,
		PlayerID: ticket.PlayerID,
	})
	if err != nil {
		return domain.ScorerTicket{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TicketRepository) FindByCode(ctx context.Context, code string) (domain.ScorerTicket, error) {
	ticket, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.ScorerTicket{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return r.daoToDomain(ticket), nil
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID uint) ([]domain.ScorerTicket, error) {
	ticketsDAO, err := r.dao.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByUser -> %w", err)
	}

	tickets := make([]domain.ScorerTicket, len(ticketsDAO))
	for i, t := range ticketsDAO {
		tickets[i] = r.daoToDomain(t)
	}

	return tickets, nil
}

func (r *TicketRepository) ListUncheckedByMatch(ctx context.Context, matchID uint) ([]domain.ScorerTicket, error) {
	ticketsDAO, err := r.dao.ListUncheckedByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListUncheckedByMatch -> %w", err)
	}

	tickets := make([]domain.ScorerTicket, len(ticketsDAO))
	for i, t := range ticketsDAO {
		tickets[i] = r.daoToDomain(t)
	}

	return tickets, nil
}

// TicketOutcome mirrors the resolution verdict handed to storage.
type TicketOutcome struct {
	TicketID   uint
	HasWon     bool
	PrizeLabel string
	PrizeValue int
}

func (r *TicketRepository) ApplyResolution(ctx context.Context, outcomes []TicketOutcome) (int, error) {
	outcomesDAO := make([]dao.TicketOutcome, len(outcomes))
	for i, o := range outcomes {
		outcomesDAO[i] = dao.TicketOutcome{
			TicketID:   o.TicketID,
			HasWon:     o.HasWon,
			PrizeLabel: o.PrizeLabel,
			PrizeValue: o.PrizeValue,
		}
	}

	checked, err := r.dao.ApplyResolution(ctx, outcomesDAO)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ApplyResolution -> %w", err)
	}

	return checked, nil
}

func (r *TicketRepository) Redeem(ctx context.Context, code string) (domain.ScorerTicket, error) {
	ticket, err := r.dao.Redeem(ctx, code)
	if err != nil {
		return domain.ScorerTicket{}, fmt.Errorf("r.dao.Redeem -> %w", err)
	}

	return r.daoToDomain(ticket), nil
}

func (r *TicketRepository) daoToDomain(t dao.ScorerTicket) domain.ScorerTicket {
	return domain.ScorerTicket{
		ID:         t.ID,
		Code:       t.Code,
		UserID:     t.UserID,
		MatchID:    t.MatchID,
		PlayerID:   t.PlayerID,
		HasWon:     t.HasWon,
		IsChecked:  t.IsChecked,
		IsRedeemed: t.IsRedeemed,
		PrizeLabel: t.PrizeLabel,
		PrizeValue: t.PrizeValue,
		RedeemedAt: t.RedeemedAt,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
