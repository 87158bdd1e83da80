package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

var (
	ErrCodeNotFound             = dao.ErrCodeNotFound
	ErrRegistrationCodeNotFound = dao.ErrRegistrationCodeNotFound
)

type QRCodeDAO interface {
	RotateDaily(ctx context.Context, date time.Time, freshCode string) (dao.DailyQRCode, error)
	FindDailyByCode(ctx context.Context, code string) (dao.DailyQRCode, error)
	RecordScan(ctx context.Context, userID, codeID uint) (bool, error)
	GetOrCreateRegistration(ctx context.Context, campaign, freshCode string) (dao.RegistrationQRCode, error)
	FindRegistrationByCode(ctx context.Context, code string) (dao.RegistrationQRCode, error)
	RegisterUser(ctx context.Context, userID, codeID uint) (bool, error)
}

type QRCodeRepository struct {
	dao QRCodeDAO
}

func NewQRCodeRepository(dao QRCodeDAO) *QRCodeRepository {
	return &QRCodeRepository{
		dao: dao,
	}
}

func (r *QRCodeRepository) RotateDaily(ctx context.Context, date time.Time, freshCode string) (domain.DailyQRCode, error) {
	code, err := r.dao.RotateDaily(ctx, date, freshCode)
	if err != nil {
		return domain.DailyQRCode{}, fmt.Errorf("r.dao.RotateDaily -> %w", err)
	}

	return r.dailyDaoToDomain(code), nil
}

func (r *QRCodeRepository) FindDailyByCode(ctx context.Context, code string) (domain.DailyQRCode, error) {
	daily, err := r.dao.FindDailyByCode(ctx, code)
	if err != nil {
		return domain.DailyQRCode{}, fmt.Errorf("r.dao.FindDailyByCode -> %w", err)
	}

	return r.dailyDaoToDomain(daily), nil
}

func (r *QRCodeRepository) RecordScan(ctx context.Context, userID, codeID uint) (bool, error) {
	firstScan, err := r.dao.RecordScan(ctx, userID, codeID)
	if err != nil {
		return false, fmt.Errorf("r.dao.RecordScan -> %w", err)
	}

	return firstScan, nil
}

func (r *QRCodeRepository) GetOrCreateRegistration(ctx context.Context, campaign, freshCode string) (domain.RegistrationQRCode, error) {
	code, err := r.dao.GetOrCreateRegistration(ctx, campaign, freshCode)
	if err != nil {
		return domain.RegistrationQRCode{}, fmt.Errorf("r.dao.GetOrCreateRegistration -> %w", err)
	}

	return r.registrationDaoToDomain(code), nil
}

func (r *QRCodeRepository) FindRegistrationByCode(ctx context.Context, code string) (domain.RegistrationQRCode, error) {
	registration, err := r.dao.FindRegistrationByCode(ctx, code)
	if err != nil {
		return domain.RegistrationQRCode{}, fmt.Errorf("r.dao.FindRegistrationByCode -> %w", err)
	}

	return r.registrationDaoToDomain(registration), nil
}

func (r *QRCodeRepository) RegisterUser(ctx context.Context, userID, codeID uint) (bool, error) {
	alreadyRegistered, err := r.dao.RegisterUser(ctx, userID, codeID)
	if err != nil {
		return false, fmt.Errorf("r.dao.RegisterUser -> %w", err)
	}

	return alreadyRegistered, nil
}

func (r *QRCodeRepository) dailyDaoToDomain(c dao.DailyQRCode) domain.DailyQRCode {
	return domain.DailyQRCode{
		ID:        c.ID,
		Code:      c.Code,
		ValidDate: c.ValidDate,
		IsActive:  c.IsActive,
		ScanCount: c.ScanCount,
		CreatedAt: c.CreatedAt,
	}
}

func (r *QRCodeRepository) registrationDaoToDomain(c dao.RegistrationQRCode) domain.RegistrationQRCode {
	return domain.RegistrationQRCode{
		ID:        c.ID,
		Code:      c.Code,
		Campaign:  c.Campaign,
		IsActive:  c.IsActive,
		ScanCount: c.ScanCount,
		CreatedAt: c.CreatedAt,
	}
}
