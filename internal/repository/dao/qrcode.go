package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrCodeNotFound             = errors.New("code not found")
	ErrRegistrationCodeNotFound = errors.New("registration code not found")
)

// DailyQRCode holds one sweepstake code per calendar date. ValidDate is
// stored truncated to midnight in the restaurant's timezone.
type DailyQRCode struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"not null;unique"`
	ValidDate time.Time `gorm:"not null;uniqueIndex"`
	IsActive  bool      `gorm:"not null;default:true"`
	ScanCount int       `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// ScanRecord unique (user, code) pair: one credited scan per user per code.
type ScanRecord struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_code"`
	CodeID    uint      `gorm:"not null;uniqueIndex:idx_user_code"`
	CreatedAt time.Time `gorm:"index"`
}

type RegistrationQRCode struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"not null;unique"`
	Campaign  string `gorm:"not null;unique"`
	IsActive  bool   `gorm:"not null;default:true"`
	ScanCount int    `gorm:"not null;default:0"`
	CreatedAt time.Time
}

type QRCodeDAO struct {
	db *gorm.DB
}

func NewQRCodeDAO(db *gorm.DB) *QRCodeDAO {
	return &QRCodeDAO{
		db: db,
	}
}

// RotateDaily deactivates every other daily code and returns the code for
// the given date, creating it when none exists yet. Rotating twice for the
// same date returns the same row.
func (d *QRCodeDAO) RotateDaily(ctx context.Context, date time.Time, freshCode string) (DailyQRCode, error) {
	var code DailyQRCode

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&DailyQRCode{}).
			Where("valid_date <> ? AND is_active = ?", date, true).
			Update("is_active", false).Error
		if err != nil {
			return err
		}

		err = tx.Where(DailyQRCode{ValidDate: date}).
			Attrs(DailyQRCode{Code: freshCode, IsActive: true}).
			FirstOrCreate(&code).Error
		if err != nil {
			return err
		}

		if !code.IsActive {
			code.IsActive = true

			return tx.Model(&code).Update("is_active", true).Error
		}

		return nil
	})
	if err != nil {
		return DailyQRCode{}, err
	}

	return code, nil
}

func (d *QRCodeDAO) FindDailyByCode(ctx context.Context, code string) (DailyQRCode, error) {
	var daily DailyQRCode

	result := d.db.WithContext(ctx).First(&daily, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return DailyQRCode{}, ErrCodeNotFound
		}

		return DailyQRCode{}, result.Error
	}

	return daily, nil
}

// RecordScan inserts the (user, code) scan pair and increments the code's
// counter in one transaction. A re-scan leaves the counter untouched and
// reports isFirstScan = false.
func (d *QRCodeDAO) RecordScan(ctx context.Context, userID, codeID uint) (bool, error) {
	firstScan := false

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&ScanRecord{}).
			Where("user_id = ? AND code_id = ?", userID, codeID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		record := ScanRecord{UserID: userID, CodeID: codeID}
		if err = tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}

			return err
		}

		err = tx.Model(&DailyQRCode{}).
			Where("id = ?", codeID).
			Update("scan_count", gorm.Expr("scan_count + 1")).Error
		if err != nil {
			return err
		}

		firstScan = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return firstScan, nil
}

func (d *QRCodeDAO) GetOrCreateRegistration(ctx context.Context, campaign, freshCode string) (RegistrationQRCode, error) {
	var code RegistrationQRCode

	err := d.db.WithContext(ctx).
		Where(RegistrationQRCode{Campaign: campaign}).
		Attrs(RegistrationQRCode{Code: freshCode, IsActive: true}).
		FirstOrCreate(&code).Error
	if err != nil {
		return RegistrationQRCode{}, err
	}

	return code, nil
}

func (d *QRCodeDAO) FindRegistrationByCode(ctx context.Context, code string) (RegistrationQRCode, error) {
	var registration RegistrationQRCode

	result := d.db.WithContext(ctx).First(&registration, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return RegistrationQRCode{}, ErrRegistrationCodeNotFound
		}

		return RegistrationQRCode{}, result.Error
	}

	return registration, nil
}

// RegisterUser flips the user's registered flag and counts the scan once.
// The user flag is the idempotency guard: a re-scan reports
// alreadyRegistered and leaves the counter alone.
func (d *QRCodeDAO) RegisterUser(ctx context.Context, userID, codeID uint) (bool, error) {
	alreadyRegistered := false

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}

			return err
		}

		if user.RegisteredForPronostics {
			alreadyRegistered = true

			return nil
		}

		now := time.Now()
		err := tx.Model(&user).Updates(map[string]interface{}{
			"registered_for_pronostics": true,
			"registered_at":             now,
		}).Error
		if err != nil {
			return err
		}

		return tx.Model(&RegistrationQRCode{}).
			Where("id = ?", codeID).
			Update("scan_count", gorm.Expr("scan_count + 1")).Error
	})
	if err != nil {
		return false, err
	}

	return alreadyRegistered, nil
}
