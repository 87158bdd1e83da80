package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
)

var (
	ErrAccountNotFound         = repository.ErrAccountNotFound
	ErrAccountPOSRefTaken      = repository.ErrAccountPOSRefTaken
	ErrPurchaseNotFound        = repository.ErrPurchaseNotFound
	ErrPurchaseAlreadyReversed = repository.ErrPurchaseAlreadyReversed
)

type LoyaltyRepository interface {
	GetOrCreateAccount(ctx context.Context, userID uint) (domain.LoyaltyAccount, error)
	FindAccountByPOSRef(ctx context.Context, posRef string) (domain.LoyaltyAccount, error)
	LinkAccountPOSRef(ctx context.Context, accountID uint, posRef string) error
	ApplyPurchase(ctx context.Context, accountID uint, orderRef string, amount float64, points int, description string) (domain.LoyaltyTransaction, error)
	ReversePurchase(ctx context.Context, accountID uint, orderRef string) (domain.LoyaltyTransaction, error)
	ListTransactions(ctx context.Context, accountID uint) ([]domain.LoyaltyTransaction, error)
}

// PurchaseHook runs after a purchase has been durably applied. Hook failures
// are logged and never propagated to the caller of ApplyPurchase.
type PurchaseHook interface {
	OnPurchaseApplied(ctx context.Context, result domain.PurchaseResult)
}

type LoyaltyService struct {
	repo LoyaltyRepository
	hook PurchaseHook
}

func NewLoyaltyService(repo LoyaltyRepository) *LoyaltyService {
	return &LoyaltyService{
		repo: repo,
	}
}

// SetPurchaseHook wires the post-commit side effect. Called once at startup.
func (s *LoyaltyService) SetPurchaseHook(hook PurchaseHook) {
	s.hook = hook
}

// ApplyPurchase credits one POS order to the matching loyalty account.
// Unknown customer references and redelivered orders both resolve to a
// no-op result with Applied = false.
func (s *LoyaltyService) ApplyPurchase(ctx context.Context, customerRef, orderRef string, amount float64, description string) (domain.PurchaseResult, error) {
	account, err := s.repo.FindAccountByPOSRef(ctx, customerRef)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			zap.L().Info("dropping purchase for unknown customer reference",
				zap.String("customer_ref", customerRef),
				zap.String("order_ref", orderRef))

			return domain.PurchaseResult{}, nil
		}

		return domain.PurchaseResult{}, fmt.Errorf("s.repo.FindAccountByPOSRef -> %w", err)
	}

	points := domain.PointsForAmount(amount)

	entry, err := s.repo.ApplyPurchase(ctx, account.ID, orderRef, amount, points, description)
	if err != nil {
		if errors.Is(err, repository.ErrOrderAlreadyApplied) {
			return domain.PurchaseResult{
				AccountID: account.ID,
				UserID:    account.UserID,
			}, nil
		}

		return domain.PurchaseResult{}, fmt.Errorf("s.repo.ApplyPurchase -> %w", err)
	}

	result := domain.PurchaseResult{
		AccountID:   account.ID,
		UserID:      account.UserID,
		PointsDelta: entry.Points,
		Applied:     true,
	}

	if s.hook != nil {
		s.hook.OnPurchaseApplied(ctx, result)
	}

	return result, nil
}

// ReversePurchase appends the negative adjustment for a previously applied
// order. A reversal for an order that was never applied is a logged no-op.
// A second reversal of the same order returns ErrPurchaseAlreadyReversed.
func (s *LoyaltyService) ReversePurchase(ctx context.Context, customerRef, orderRef string) (domain.PurchaseResult, error) {
	account, err := s.repo.FindAccountByPOSRef(ctx, customerRef)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			zap.L().Info("dropping reversal for unknown customer reference",
				zap.String("customer_ref", customerRef),
				zap.String("order_ref", orderRef))

			return domain.PurchaseResult{}, nil
		}

		return domain.PurchaseResult{}, fmt.Errorf("s.repo.FindAccountByPOSRef -> %w", err)
	}

	entry, err := s.repo.ReversePurchase(ctx, account.ID, orderRef)
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			zap.L().Info("dropping reversal for unknown order reference",
				zap.String("customer_ref", customerRef),
				zap.String("order_ref", orderRef))

			return domain.PurchaseResult{
				AccountID: account.ID,
				UserID:    account.UserID,
			}, nil
		}
		if errors.Is(err, repository.ErrPurchaseAlreadyReversed) {
			return domain.PurchaseResult{}, ErrPurchaseAlreadyReversed
		}

		return domain.PurchaseResult{}, fmt.Errorf("s.repo.ReversePurchase -> %w", err)
	}

	return domain.PurchaseResult{
		AccountID:   account.ID,
		UserID:      account.UserID,
		PointsDelta: entry.Points,
		Applied:     true,
	}, nil
}

func (s *LoyaltyService) GetAccount(ctx context.Context, userID uint) (domain.LoyaltyAccount, error) {
	account, err := s.repo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return domain.LoyaltyAccount{}, fmt.Errorf("s.repo.GetOrCreateAccount -> %w", err)
	}

	return account, nil
}

func (s *LoyaltyService) LinkAccount(ctx context.Context, userID uint, posRef string) (domain.LoyaltyAccount, error) {
	account, err := s.repo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return domain.LoyaltyAccount{}, fmt.Errorf("s.repo.GetOrCreateAccount -> %w", err)
	}

	if err = s.repo.LinkAccountPOSRef(ctx, account.ID, posRef); err != nil {
		return domain.LoyaltyAccount{}, fmt.Errorf("s.repo.LinkAccountPOSRef -> %w", err)
	}

	account.ExternalPOSRef = posRef

	return account, nil
}

func (s *LoyaltyService) ListTransactions(ctx context.Context, userID uint) ([]domain.LoyaltyTransaction, error) {
	account, err := s.repo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetOrCreateAccount -> %w", err)
	}

	transactions, err := s.repo.ListTransactions(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListTransactions -> %w", err)
	}

	return transactions, nil
}
