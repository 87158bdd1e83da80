package domain

import "time"

type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "BRONZE"
	TierSilver   LoyaltyTier = "SILVER"
	TierGold     LoyaltyTier = "GOLD"
	TierPlatinum LoyaltyTier = "PLATINUM"
)

// Lifetime-spent thresholds for tier upgrades.
const (
	silverThreshold   = 500
	goldThreshold     = 1000
	platinumThreshold = 2000
)

// TierForSpent recomputes the tier from scratch out of the lifetime amount
// spent. Tiers are never incremented in place, so a wrongly ordered event
// stream cannot make the tier drift away from the ledger.
func TierForSpent(totalSpent float64) LoyaltyTier {
	switch {
	case totalSpent >= platinumThreshold:
		return TierPlatinum
	case totalSpent >= goldThreshold:
		return TierGold
	case totalSpent >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// PointsForAmount is the earn rate: 1 point per 10 currency units, floored.
func PointsForAmount(amount float64) int {
	if amount <= 0 {
		return 0
	}

	return int(amount / 10)
}

type LoyaltyAccount struct {
	ID             uint        `json:"id"`
	UserID         uint        `json:"user_id"`
	ExternalPOSRef string      `json:"external_pos_ref,omitempty"`
	TotalPoints    int         `json:"total_points"`
	CurrentPoints  int         `json:"current_points"`
	TotalSpent     float64     `json:"total_spent"`
	VisitCount     int         `json:"visit_count"`
	Tier           LoyaltyTier `json:"tier"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type LoyaltyTransactionKind string

const (
	TransactionPurchase   LoyaltyTransactionKind = "PURCHASE"
	TransactionAdjustment LoyaltyTransactionKind = "ADJUSTMENT"
)

// LoyaltyTransaction is an append-only ledger entry. A refund is a new
// negative ADJUSTMENT row pointing at the same order reference, never a
// mutation of the original PURCHASE row.
type LoyaltyTransaction struct {
	ID          uint                   `json:"id"`
	AccountID   uint                   `json:"account_id"`
	Kind        LoyaltyTransactionKind `json:"kind"`
	Points      int                    `json:"points"`
	Amount      float64                `json:"amount"`
	OrderRef    string                 `json:"order_ref"`
	Description string                 `json:"description"`
	CreatedAt   time.Time              `json:"created_at"`
}

// PurchaseResult is what the reconciliation engine reports back to the
// webhook boundary after applying one POS event.
type PurchaseResult struct {
	AccountID   uint `json:"account_id"`
	UserID      uint `json:"user_id"`
	PointsDelta int  `json:"points_delta"`
	Applied     bool `json:"applied"`
}
