package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lestade/fanzone-api/internal/domain"
)

var (
	ErrAccountNotFound         = errors.New("loyalty account not found")
	ErrAccountPOSRefTaken      = errors.New("loyalty account already linked to a POS customer")
	ErrOrderAlreadyApplied     = errors.New("order already applied")
	ErrPurchaseNotFound        = errors.New("purchase not found")
	ErrPurchaseAlreadyReversed = errors.New("purchase already reversed")
)

type LoyaltyAccount struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex;not null"`

	// POS customer reference, optional and set at most once.
	ExternalPOSRef *string `gorm:"uniqueIndex"`

	TotalPoints   int     `gorm:"not null;default:0"`
	CurrentPoints int     `gorm:"not null;default:0"`
	TotalSpent    float64 `gorm:"not null;default:0"`
	VisitCount    int     `gorm:"not null;default:0"`
	Tier          string  `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// LoyaltyTransaction rows are append-only. The unique index on
// (account_id, order_ref, kind) is the idempotency key: a redelivered
// webhook can never produce a second PURCHASE for the same order, and a
// refund can never be applied twice.
type LoyaltyTransaction struct {
	ID        uint   `gorm:"primaryKey"`
	AccountID uint   `gorm:"not null;index;uniqueIndex:idx_ledger_order"`
	OrderRef  string `gorm:"not null;uniqueIndex:idx_ledger_order"`
	Kind      string `gorm:"not null;uniqueIndex:idx_ledger_order"`

	Points      int     `gorm:"not null"`
	Amount      float64 `gorm:"not null"`
	Description string

	CreatedAt time.Time `gorm:"not null"`
}

func (LoyaltyTransaction) TableName() string {
	return "loyalty_transactions"
}

type LoyaltyDAO struct {
	db *gorm.DB
}

func NewLoyaltyDAO(db *gorm.DB) *LoyaltyDAO {
	return &LoyaltyDAO{
		db: db,
	}
}

// GetOrCreateByUserID returns the user's account, creating an empty BRONZE
// account on first access.
func (d *LoyaltyDAO) GetOrCreateByUserID(ctx context.Context, userID uint) (LoyaltyAccount, error) {
	var account LoyaltyAccount

	err := d.db.WithContext(ctx).
		Where(LoyaltyAccount{UserID: userID}).
		Attrs(LoyaltyAccount{Tier: string(domain.TierBronze)}).
		FirstOrCreate(&account).Error
	if err != nil {
		return LoyaltyAccount{}, err
	}

	return account, nil
}

func (d *LoyaltyDAO) FindByPOSRef(ctx context.Context, posRef string) (LoyaltyAccount, error) {
	var account LoyaltyAccount

	result := d.db.WithContext(ctx).First(&account, "external_pos_ref = ?", posRef)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return LoyaltyAccount{}, ErrAccountNotFound
		}

		return LoyaltyAccount{}, result.Error
	}

	return account, nil
}

// LinkPOSRef attaches the POS customer reference to an account. The
// reference is write-once; relinking a different value fails.
func (d *LoyaltyDAO) LinkPOSRef(ctx context.Context, accountID uint, posRef string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account LoyaltyAccount
		if err := tx.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}

			return err
		}

		if account.ExternalPOSRef != nil {
			if *account.ExternalPOSRef == posRef {
				return nil
			}

			return ErrAccountPOSRefTaken
		}

		return tx.Model(&account).Update("external_pos_ref", posRef).Error
	})
}

// ApplyPurchase inserts the PURCHASE ledger row and folds it into the
// account inside one transaction. A second delivery of the same order
// reference returns ErrOrderAlreadyApplied and changes nothing.
func (d *LoyaltyDAO) ApplyPurchase(ctx context.Context, accountID uint, orderRef string, amount float64, points int, description string) (LoyaltyTransaction, error) {
	var entry LoyaltyTransaction

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&LoyaltyTransaction{}).
			Where("account_id = ? AND order_ref = ? AND kind = ?", accountID, orderRef, string(domain.TransactionPurchase)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrOrderAlreadyApplied
		}

		var account LoyaltyAccount
		if err = tx.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}

			return err
		}

		entry = LoyaltyTransaction{
			AccountID:   accountID,
			OrderRef:    orderRef,
			Kind:        string(domain.TransactionPurchase),
			Points:      points,
			Amount:      amount,
			Description: description,
		}
		if err = tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOrderAlreadyApplied
			}

			return err
		}

		account.TotalSpent += amount
		account.VisitCount++
		account.TotalPoints += points
		account.CurrentPoints += points
		account.Tier = string(domain.TierForSpent(account.TotalSpent))

		return tx.Save(&account).Error
	})
	if err != nil {
		return LoyaltyTransaction{}, err
	}

	return entry, nil
}

// ReversePurchase appends a negative ADJUSTMENT mirroring the original
// PURCHASE and subtracts it from the account, clamping every quantity at
// zero. Reversing twice returns ErrPurchaseAlreadyReversed.
func (d *LoyaltyDAO) ReversePurchase(ctx context.Context, accountID uint, orderRef string) (LoyaltyTransaction, error) {
	var entry LoyaltyTransaction

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase LoyaltyTransaction
		err := tx.
			Where("account_id = ? AND order_ref = ? AND kind = ?", accountID, orderRef, string(domain.TransactionPurchase)).
			First(&purchase).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseNotFound
			}

			return err
		}

		var count int64
		err = tx.Model(&LoyaltyTransaction{}).
			Where("account_id = ? AND order_ref = ? AND kind = ?", accountID, orderRef, string(domain.TransactionAdjustment)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrPurchaseAlreadyReversed
		}

		var account LoyaltyAccount
		if err = tx.First(&account, accountID).Error; err != nil {
			return err
		}

		entry = LoyaltyTransaction{
			AccountID:   accountID,
			OrderRef:    orderRef,
			Kind:        string(domain.TransactionAdjustment),
			Points:      -purchase.Points,
			Amount:      -purchase.Amount,
			Description: "Annulation " + orderRef,
		}
		if err = tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPurchaseAlreadyReversed
			}

			return err
		}

		account.TotalSpent = clampFloat(account.TotalSpent - purchase.Amount)
		account.VisitCount = clampInt(account.VisitCount - 1)
		account.TotalPoints = clampInt(account.TotalPoints - purchase.Points)
		account.CurrentPoints = clampInt(account.CurrentPoints - purchase.Points)
		account.Tier = string(domain.TierForSpent(account.TotalSpent))

		return tx.Save(&account).Error
	})
	if err != nil {
		return LoyaltyTransaction{}, err
	}

	return entry, nil
}

func (d *LoyaltyDAO) ListTransactions(ctx context.Context, accountID uint) ([]LoyaltyTransaction, error) {
	var entries []LoyaltyTransaction

	result := d.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

func clampInt(n int) int {
	if n < 0 {
		return 0
	}

	return n
}

func clampFloat(f float64) float64 {
	if f < 0 {
		return 0
	}

	return f
}
