package repository

import (
	"context"
	"fmt"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

var (
	ErrRewardNotFound        = dao.ErrRewardNotFound
	ErrRewardExpired         = dao.ErrRewardExpired
	ErrRewardAlreadyRedeemed = dao.ErrRewardAlreadyRedeemed
)

type RewardDAO interface {
	FindByCode(ctx context.Context, code string) (dao.RewardCode, error)
	ListByUser(ctx context.Context, userID uint) ([]dao.RewardCode, error)
	Redeem(ctx context.Context, code string, staffID uint) (dao.RewardCode, error)
}

type RewardRepository struct {
	dao RewardDAO
}

func NewRewardRepository(dao RewardDAO) *RewardRepository {
	return &RewardRepository{
		dao: dao,
	}
}

func (r *RewardRepository) FindByCode(ctx context.Context, code string) (domain.RewardCode, error) {
	reward, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.RewardCode{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return r.daoToDomain(reward), nil
}

func (r *RewardRepository) ListByUser(ctx context.Context, userID uint) ([]domain.RewardCode, error) {
	rewardsDAO, err := r.dao.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByUser -> %w", err)
	}

	rewards := make([]domain.RewardCode, len(rewardsDAO))
	for i, reward := range rewardsDAO {
		rewards[i] = r.daoToDomain(reward)
	}

	return rewards, nil
}

func (r *RewardRepository) Redeem(ctx context.Context, code string, staffID uint) (domain.RewardCode, error) {
	reward, err := r.dao.Redeem(ctx, code, staffID)
	if err != nil {
		return domain.RewardCode{}, fmt.Errorf("r.dao.Redeem -> %w", err)
	}

	return r.daoToDomain(reward), nil
}

func (r *RewardRepository) daoToDomain(c dao.RewardCode) domain.RewardCode {
	return domain.RewardCode{
		ID:         c.ID,
		Code:       c.Code,
		UserID:     c.UserID,
		MatchID:    c.MatchID,
		Kind:       domain.RewardKind(c.Kind),
		ExpiresAt:  c.ExpiresAt,
		IsRedeemed: c.IsRedeemed,
		RedeemedBy: c.RedeemedBy,
		RedeemedAt: c.RedeemedAt,
		CreatedAt:  c.CreatedAt,
	}
}
