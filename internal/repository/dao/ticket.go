package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketCodeExists      = errors.New("ticket code already exists")
	ErrTicketNotWinning      = errors.New("ticket is not a winning ticket")
	ErrTicketAlreadyRedeemed = errors.New("ticket already redeemed")
)

type ScorerTicket struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"not null;unique"`

	UserID   *uint `gorm:"index"`
	MatchID  uint  `gorm:"not null;index"`
	PlayerID uint  `gorm:"not null"`

	HasWon     bool `gorm:"not null;default:false"`
	IsChecked  bool `gorm:"not null;default:false"`
	IsRedeemed bool `gorm:"not null;default:false"`

	PrizeLabel string
	PrizeValue int
	RedeemedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

// Insert stores a freshly issued ticket. A code collision maps to
// ErrTicketCodeExists so the caller can regenerate and retry.
func (d *TicketDAO) Insert(ctx context.Context, ticket ScorerTicket) (ScorerTicket, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ScorerTicket{}).Where("code = ?", ticket.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTicketCodeExists
		}

		return tx.Create(&ticket).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ScorerTicket{}, ErrTicketCodeExists
		}

		return ScorerTicket{}, err
	}

	return ticket, nil
}

func (d *TicketDAO) FindByCode(ctx context.Context, code string) (ScorerTicket, error) {
	var ticket ScorerTicket

	result := d.db.WithContext(ctx).First(&ticket, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ScorerTicket{}, ErrTicketNotFound
		}

		return ScorerTicket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) ListByUser(ctx context.Context, userID uint) ([]ScorerTicket, error) {
	var tickets []ScorerTicket

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

// ListUncheckedByMatch returns the tickets a resolution run still has to
// process. Checked tickets never reappear here, which makes resolution
// idempotent at the ticket level.
func (d *TicketDAO) ListUncheckedByMatch(ctx context.Context, matchID uint) ([]ScorerTicket, error) {
	var tickets []ScorerTicket

	result := d.db.WithContext(ctx).
		Where("match_id = ? AND is_checked = ?", matchID, false).
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

// TicketOutcome is the resolution verdict for one ticket.
type TicketOutcome struct {
	TicketID   uint
	HasWon     bool
	PrizeLabel string
	PrizeValue int
}

// ApplyResolution persists all outcomes in one transaction. Each update is
// guarded on is_checked = false, so a concurrent resolution of the same
// match cannot double-assign prizes; the slower run simply affects zero
// rows. Returns how many tickets were actually checked by this run.
func (d *TicketDAO) ApplyResolution(ctx context.Context, outcomes []TicketOutcome) (int, error) {
	checked := 0

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, outcome := range outcomes {
			result := tx.Model(&ScorerTicket{}).
				Where("id = ? AND is_checked = ?", outcome.TicketID, false).
				Updates(map[string]interface{}{
					"is_checked":  true,
					"has_won":     outcome.HasWon,
					"prize_label": outcome.PrizeLabel,
					"prize_value": outcome.PrizeValue,
				})
			if result.Error != nil {
				return result.Error
			}

			checked += int(result.RowsAffected)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return checked, nil
}

// Redeem flips the redeemed flag exactly once. The conditional update on
// is_redeemed = false means two concurrent redemptions of the same code
// cannot both succeed.
func (d *TicketDAO) Redeem(ctx context.Context, code string) (ScorerTicket, error) {
	var ticket ScorerTicket

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&ticket, "code = ?", code).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}

			return err
		}

		if !ticket.IsChecked || !ticket.HasWon {
			return ErrTicketNotWinning
		}
		if ticket.IsRedeemed {
			return ErrTicketAlreadyRedeemed
		}

		now := time.Now()
		result := tx.Model(&ScorerTicket{}).
			Where("id = ? AND is_redeemed = ?", ticket.ID, false).
			Updates(map[string]interface{}{
				"is_redeemed": true,
				"redeemed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTicketAlreadyRedeemed
		}

		ticket.IsRedeemed = true
		ticket.RedeemedAt = &now

		return nil
	})
	if err != nil {
		return ScorerTicket{}, err
	}

	return ticket, nil
}
