package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/pkg/shortcode"
	"github.com/lestade/fanzone-api/internal/repository"
)

var (
	ErrCodeNotFound             = repository.ErrCodeNotFound
	ErrRegistrationCodeNotFound = repository.ErrRegistrationCodeNotFound
	ErrCodeInactive             = errors.New("code is inactive")
	ErrCodeNotValidToday        = errors.New("code is not valid today")
)

type QRCodeRepository interface {
	RotateDaily(ctx context.Context, date time.Time, freshCode string) (domain.DailyQRCode, error)
	FindDailyByCode(ctx context.Context, code string) (domain.DailyQRCode, error)
	RecordScan(ctx context.Context, userID, codeID uint) (bool, error)
	GetOrCreateRegistration(ctx context.Context, campaign, freshCode string) (domain.RegistrationQRCode, error)
	FindRegistrationByCode(ctx context.Context, code string) (domain.RegistrationQRCode, error)
	RegisterUser(ctx context.Context, userID, codeID uint) (bool, error)
}

type QRCodeService struct {
	repo QRCodeRepository
	loc  *time.Location
}

func NewQRCodeService(repo QRCodeRepository, loc *time.Location) *QRCodeService {
	return &QRCodeService{
		repo: repo,
		loc:  loc,
	}
}

// RotateDailyCode makes the given date's code the only active one, creating
// it on first rotation for that date.
func (s *QRCodeService) RotateDailyCode(ctx context.Context, date time.Time) (domain.DailyQRCode, error) {
	fresh, err := shortcode.New(shortcode.DefaultLength)
	if err != nil {
		return domain.DailyQRCode{}, fmt.Errorf("shortcode.New -> %w", err)
	}

	code, err := s.repo.RotateDaily(ctx, s.midnight(date), fresh)
	if err != nil {
		return domain.DailyQRCode{}, fmt.Errorf("s.repo.RotateDaily -> %w", err)
	}

	return code, nil
}

// Scan validates the daily code for today and credits the scan. Re-scans of
// the same code by the same user report IsFirstScan = false.
func (s *QRCodeService) Scan(ctx context.Context, userID uint, code string) (domain.ScanResult, error) {
	daily, err := s.repo.FindDailyByCode(ctx, code)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("s.repo.FindDailyByCode -> %w", err)
	}

	if !daily.IsActive {
		return domain.ScanResult{}, ErrCodeInactive
	}
	if !s.sameDay(daily.ValidDate, time.Now()) {
		return domain.ScanResult{}, ErrCodeNotValidToday
	}

	firstScan, err := s.repo.RecordScan(ctx, userID, daily.ID)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("s.repo.RecordScan -> %w", err)
	}

	return domain.ScanResult{
		CodeID:      daily.ID,
		IsFirstScan: firstScan,
	}, nil
}

func (s *QRCodeService) EnsureRegistrationCode(ctx context.Context, campaign string) (domain.RegistrationQRCode, error) {
	fresh, err := shortcode.New(shortcode.DefaultLength)
	if err != nil {
		return domain.RegistrationQRCode{}, fmt.Errorf("shortcode.New -> %w", err)
	}

	code, err := s.repo.GetOrCreateRegistration(ctx, campaign, fresh)
	if err != nil {
		return domain.RegistrationQRCode{}, fmt.Errorf("s.repo.GetOrCreateRegistration -> %w", err)
	}

	return code, nil
}

// Register flips the user's contest registration flag at most once. The
// user flag, not a join table, is the idempotency guard.
func (s *QRCodeService) Register(ctx context.Context, userID uint, code string) (domain.RegistrationResult, error) {
	registration, err := s.repo.FindRegistrationByCode(ctx, code)
	if err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("s.repo.FindRegistrationByCode -> %w", err)
	}

	if !registration.IsActive {
		return domain.RegistrationResult{}, ErrCodeInactive
	}

	alreadyRegistered, err := s.repo.RegisterUser(ctx, userID, registration.ID)
	if err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("s.repo.RegisterUser -> %w", err)
	}

	return domain.RegistrationResult{AlreadyRegistered: alreadyRegistered}, nil
}

func (s *QRCodeService) midnight(t time.Time) time.Time {
	local := t.In(s.loc)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

func (s *QRCodeService) sameDay(a, b time.Time) bool {
	a, b = a.In(s.loc), b.In(s.loc)

	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
