package service

import (
	"context"
	"fmt"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
)

var (
	ErrRewardNotFound        = repository.ErrRewardNotFound
	ErrRewardExpired         = repository.ErrRewardExpired
	ErrRewardAlreadyRedeemed = repository.ErrRewardAlreadyRedeemed
)

type RewardRepository interface {
	FindByCode(ctx context.Context, code string) (domain.RewardCode, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.RewardCode, error)
	Redeem(ctx context.Context, code string, staffID uint) (domain.RewardCode, error)
}

type RewardService struct {
	repo RewardRepository
}

func NewRewardService(repo RewardRepository) *RewardService {
	return &RewardService{
		repo: repo,
	}
}

func (s *RewardService) GetReward(ctx context.Context, code string) (domain.RewardCode, error) {
	reward, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return domain.RewardCode{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	return reward, nil
}

func (s *RewardService) ListUserRewards(ctx context.Context, userID uint) ([]domain.RewardCode, error) {
	rewards, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByUser -> %w", err)
	}

	return rewards, nil
}

// Redeem marks the reward used by the given staff member. Expired and
// already-redeemed codes are rejected.
func (s *RewardService) Redeem(ctx context.Context, code string, staffID uint) (domain.RewardCode, error) {
	reward, err := s.repo.Redeem(ctx, code, staffID)
	if err != nil {
		return domain.RewardCode{}, fmt.Errorf("s.repo.Redeem -> %w", err)
	}

	return reward, nil
}
