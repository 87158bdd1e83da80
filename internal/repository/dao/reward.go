package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRewardNotFound        = errors.New("reward not found")
	ErrRewardExpired         = errors.New("reward expired")
	ErrRewardAlreadyRedeemed = errors.New("reward already redeemed")
)

// RewardCode rows are unique on (user, match, kind): scoring the same
// match twice can never grant the same reward twice.
type RewardCode struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"not null;unique"`

	UserID  uint   `gorm:"not null;uniqueIndex:idx_reward_user_match"`
	MatchID uint   `gorm:"not null;uniqueIndex:idx_reward_user_match"`
	Kind    string `gorm:"not null;uniqueIndex:idx_reward_user_match"`

	ExpiresAt  time.Time `gorm:"not null"`
	IsRedeemed bool      `gorm:"not null;default:false"`
	RedeemedBy *uint
	RedeemedAt *time.Time

	CreatedAt time.Time
}

type RewardDAO struct {
	db *gorm.DB
}

func NewRewardDAO(db *gorm.DB) *RewardDAO {
	return &RewardDAO{
		db: db,
	}
}

func (d *RewardDAO) FindByCode(ctx context.Context, code string) (RewardCode, error) {
	var reward RewardCode

	result := d.db.WithContext(ctx).First(&reward, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return RewardCode{}, ErrRewardNotFound
		}

		return RewardCode{}, result.Error
	}

	return reward, nil
}

func (d *RewardDAO) ListByUser(ctx context.Context, userID uint) ([]RewardCode, error) {
	var rewards []RewardCode

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rewards)
	if result.Error != nil {
		return nil, result.Error
	}

	return rewards, nil
}

// Redeem marks the reward used, one way, guarded against double redemption
// by the conditional update.
func (d *RewardDAO) Redeem(ctx context.Context, code string, staffID uint) (RewardCode, error) {
	var reward RewardCode

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&reward, "code = ?", code).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}

			return err
		}

		if reward.IsRedeemed {
			return ErrRewardAlreadyRedeemed
		}
		if time.Now().After(reward.ExpiresAt) {
			return ErrRewardExpired
		}

		now := time.Now()
		result := tx.Model(&RewardCode{}).
			Where("id = ? AND is_redeemed = ?", reward.ID, false).
			Updates(map[string]interface{}{
				"is_redeemed": true,
				"redeemed_by": staffID,
				"redeemed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRewardAlreadyRedeemed
		}

		reward.IsRedeemed = true
		reward.RedeemedBy = &staffID
		reward.RedeemedAt = &now

		return nil
	})
	if err != nil {
		return RewardCode{}, err
	}

	return reward, nil
}
