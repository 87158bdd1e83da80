package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lestade/fanzone-api/internal/config"
	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
	"github.com/lestade/fanzone-api/internal/service"
)

// Scheduler runs the two periodic contest jobs: the daily QR code rotation
// and the weekly draw.
type Scheduler struct {
	cron *cron.Cron
}

func Start(conf *config.AppConfig, db *gorm.DB) (*Scheduler, error) {
	loc, err := time.LoadLocation(conf.Contest.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation -> %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	qrcodeSvc := service.NewQRCodeService(repository.NewQRCodeRepository(dao.NewQRCodeDAO(db)), loc)
	drawSvc := service.NewDrawService(repository.NewDrawRepository(dao.NewDrawDAO(db)), loc, rng)

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(conf.Contest.DailyRotationSpec, func() {
		code, err := qrcodeSvc.RotateDailyCode(context.Background(), time.Now())
		if err != nil {
			zap.L().Error("daily code rotation failed", zap.Error(err))

			return
		}

		zap.L().Info("daily code rotated",
			zap.String("code", code.Code),
			zap.Time("valid_date", code.ValidDate))
	})
	if err != nil {
		return nil, fmt.Errorf("c.AddFunc daily rotation -> %w", err)
	}

	_, err = c.AddFunc(conf.Contest.WeeklyDrawSpec, func() {
		// The draw covers the ISO week that ended this morning.
		year, week := drawSvc.CurrentPeriod(time.Now().AddDate(0, 0, -1))

		draw, err := drawSvc.PerformDraw(context.Background(), year, week, conf.Contest.WeeklyWinnerCount, nil)
		if err != nil {
			if errors.Is(err, service.ErrDrawAlreadyCompleted) {
				zap.L().Info("weekly draw already performed",
					zap.Int("year", year),
					zap.Int("week", week))

				return
			}

			zap.L().Error("weekly draw failed",
				zap.Int("year", year),
				zap.Int("week", week),
				zap.Error(err))

			return
		}

		zap.L().Info("weekly draw performed",
			zap.Int("year", year),
			zap.Int("week", week),
			zap.Int("participants", draw.TotalParticipants),
			zap.Int("winners", len(draw.Winners)))
	})
	if err != nil {
		return nil, fmt.Errorf("c.AddFunc weekly draw -> %w", err)
	}

	c.Start()

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
