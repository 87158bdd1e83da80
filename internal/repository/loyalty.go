package repository

import (
	"context"
	"fmt"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

var (
	ErrAccountNotFound         = dao.ErrAccountNotFound
	ErrAccountPOSRefTaken      = dao.ErrAccountPOSRefTaken
	ErrOrderAlreadyApplied     = dao.ErrOrderAlreadyApplied
	ErrPurchaseNotFound        = dao.ErrPurchaseNotFound
	ErrPurchaseAlreadyReversed = dao.ErrPurchaseAlreadyReversed
)

type LoyaltyDAO interface {
	GetOrCreateByUserID(ctx context.Context, userID uint) (dao.LoyaltyAccount, error)
	FindByPOSRef(ctx context.Context, posRef string) (dao.LoyaltyAccount, error)
	LinkPOSRef(ctx context.Context, accountID uint, posRef string) error
	ApplyPurchase(ctx context.Context, accountID uint, orderRef string, amount float64, points int, description string) (dao.LoyaltyTransaction, error)
	ReversePurchase(ctx context.Context, accountID uint, orderRef string) (dao.LoyaltyTransaction, error)
	ListTransactions(ctx context.Context, accountID uint) ([]dao.LoyaltyTransaction, error)
}

type LoyaltyRepository struct {
	dao LoyaltyDAO
}

func NewLoyaltyRepository(dao LoyaltyDAO) *LoyaltyRepository {
	return &LoyaltyRepository{
		dao: dao,
	}
}

func (r *LoyaltyRepository) GetOrCreateAccount(ctx context.Context, userID uint) (domain.LoyaltyAccount, error) {
	account, err := r.dao.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return domain.LoyaltyAccount{}, fmt.Errorf("r.dao.GetOrCreateByUserID -> %w", err)
	}

	return r.accountDaoToDomain(account), nil
}

func (r *LoyaltyRepository) FindAccountByPOSRef(ctx context.Context, posRef string) (domain.LoyaltyAccount, error) {
	account, err := r.dao.FindByPOSRef(ctx, posRef)
	if err != nil {
		return domain.LoyaltyAccount{}, fmt.Errorf("r.dao.FindByPOSRef -> %w", err)
	}

	return r.accountDaoToDomain(account), nil
}

func (r *LoyaltyRepository) LinkAccountPOSRef(ctx context.Context, accountID uint, posRef string) error {
	if err := r.dao.LinkPOSRef(ctx, accountID, posRef); err != nil {
		return fmt.Errorf("r.dao.LinkPOSRef -> %w", err)
	}

	return nil
}

func (r *LoyaltyRepository) ApplyPurchase(ctx context.Context, accountID uint, orderRef string, amount float64, points int, description string) (domain.LoyaltyTransaction, error) {
	entry, err := r.dao.ApplyPurchase(ctx, accountID, orderRef, amount, points, description)
	if err != nil {
		return domain.LoyaltyTransaction{}, fmt.Errorf("r.dao.ApplyPurchase -> %w", err)
	}

	return r.transactionDaoToDomain(entry), nil
}

func (r *LoyaltyRepository) ReversePurchase(ctx context.Context, accountID uint, orderRef string) (domain.LoyaltyTransaction, error) {
	entry, err := r.dao.ReversePurchase(ctx, accountID, orderRef)
	if err != nil {
		return domain.LoyaltyTransaction{}, fmt.Errorf("r.dao.ReversePurchase -> %w", err)
	}

	return r.transactionDaoToDomain(entry), nil
}

func (r *LoyaltyRepository) ListTransactions(ctx context.Context, accountID uint) ([]domain.LoyaltyTransaction, error) {
	entries, err := r.dao.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListTransactions -> %w", err)
	}

	transactions := make([]domain.LoyaltyTransaction, len(entries))
	for i, entry := range entries {
		transactions[i] = r.transactionDaoToDomain(entry)
	}

	return transactions, nil
}

func (r *LoyaltyRepository) accountDaoToDomain(a dao.LoyaltyAccount) domain.LoyaltyAccount {
	account := domain.LoyaltyAccount{
		ID:            a.ID,
		UserID:        a.UserID,
		TotalPoints:   a.TotalPoints,
		CurrentPoints: a.CurrentPoints,
		TotalSpent:    a.TotalSpent,
		VisitCount:    a.VisitCount,
		Tier:          domain.LoyaltyTier(a.Tier),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}

	if a.ExternalPOSRef != nil {
		account.ExternalPOSRef = *a.ExternalPOSRef
	}

	return account
}

func (r *LoyaltyRepository) transactionDaoToDomain(t dao.LoyaltyTransaction) domain.LoyaltyTransaction {
	return domain.LoyaltyTransaction{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Kind:        domain.LoyaltyTransactionKind(t.Kind),
		Points:      t.Points,
		Amount:      t.Amount,
		OrderRef:    t.OrderRef,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}
