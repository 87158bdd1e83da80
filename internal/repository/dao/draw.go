package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrDrawNotFound         = errors.New("draw not found")
	ErrDrawAlreadyCompleted = errors.New("draw already completed")
	ErrWinnerNotFound       = errors.New("winner not found")
	ErrPrizeAlreadyClaimed  = errors.New("prize already claimed")
)

type WeeklyDraw struct {
	ID     uint   `gorm:"primaryKey"`
	Year   int    `gorm:"not null;uniqueIndex:idx_draw_period"`
	Period int    `gorm:"not null;uniqueIndex:idx_draw_period"`
	Type   string `gorm:"not null;uniqueIndex:idx_draw_period"`

	WindowStart time.Time `gorm:"not null"`
	WindowEnd   time.Time `gorm:"not null"`

	Completed         bool `gorm:"not null;default:false"`
	DrawnAt           *time.Time
	TotalParticipants int `gorm:"not null;default:0"`
	TotalScans        int `gorm:"not null;default:0"`

	CreatedAt time.Time
}

type DrawWinner struct {
	ID     uint `gorm:"primaryKey"`
	DrawID uint `gorm:"not null;index"`
	UserID uint `gorm:"not null"`

	Position  int    `gorm:"not null"`
	Prize     string `gorm:"not null"`
	ScanCount int    `gorm:"not null"`

	Claimed   bool `gorm:"not null;default:false"`
	ClaimedAt *time.Time
}

type DrawDAO struct {
	db *gorm.DB
}

func NewDrawDAO(db *gorm.DB) *DrawDAO {
	return &DrawDAO{
		db: db,
	}
}

func (d *DrawDAO) GetOrCreate(ctx context.Context, year, period int, drawType string, windowStart, windowEnd time.Time) (WeeklyDraw, error) {
	var draw WeeklyDraw

	err := d.db.WithContext(ctx).
		Where(WeeklyDraw{Year: year, Period: period, Type: drawType}).
		Attrs(WeeklyDraw{WindowStart: windowStart, WindowEnd: windowEnd}).
		FirstOrCreate(&draw).Error
	if err != nil {
		return WeeklyDraw{}, err
	}

	return draw, nil
}

func (d *DrawDAO) GetByID(ctx context.Context, id uint) (WeeklyDraw, error) {
	var draw WeeklyDraw

	result := d.db.WithContext(ctx).First(&draw, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return WeeklyDraw{}, ErrDrawNotFound
		}

		return WeeklyDraw{}, result.Error
	}

	return draw, nil
}

// ParticipantRow is one eligible user with their scan count in a window.
type ParticipantRow struct {
	UserID    uint
	ScanCount int
}

// EligibleParticipants groups scan records inside the window per user.
// Users without a scan in the window simply do not appear.
func (d *DrawDAO) EligibleParticipants(ctx context.Context, windowStart, windowEnd time.Time) ([]ParticipantRow, error) {
	var rows []ParticipantRow

	err := d.db.WithContext(ctx).
		Model(&ScanRecord{}).
		Select("user_id, COUNT(*) AS scan_count").
		Where("created_at >= ? AND created_at < ?", windowStart, windowEnd).
		Group("user_id").
		Order("user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// CompleteDraw persists the winners and flips the completed flag in one
// transaction. The flag update is conditional on completed = false, so two
// concurrent draw attempts cannot both insert winners.
func (d *DrawDAO) CompleteDraw(ctx context.Context, drawID uint, winners []DrawWinner, totalParticipants, totalScans int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&WeeklyDraw{}).
			Where("id = ? AND completed = ?", drawID, false).
			Updates(map[string]interface{}{
				"completed":          true,
				"drawn_at":           now,
				"total_participants": totalParticipants,
				"total_scans":        totalScans,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDrawAlreadyCompleted
		}

		for i := range winners {
			winners[i].DrawID = drawID
			if err := tx.Create(&winners[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (d *DrawDAO) ListWinners(ctx context.Context, drawID uint) ([]DrawWinner, error) {
	var winners []DrawWinner

	result := d.db.WithContext(ctx).
		Where("draw_id = ?", drawID).
		Order("position ASC").
		Find(&winners)
	if result.Error != nil {
		return nil, result.Error
	}

	return winners, nil
}

// ClaimPrize sets the one-way claimed flag, rejecting double claims.
func (d *DrawDAO) ClaimPrize(ctx context.Context, winnerID uint) (DrawWinner, error) {
	var winner DrawWinner

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&winner, winnerID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWinnerNotFound
			}

			return err
		}

		if winner.Claimed {
			return ErrPrizeAlreadyClaimed
		}

		now := time.Now()
		result := tx.Model(&DrawWinner{}).
			Where("id = ? AND claimed = ?", winnerID, false).
			Updates(map[string]interface{}{
				"claimed":    true,
				"claimed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPrizeAlreadyClaimed
		}

		winner.Claimed = true
		winner.ClaimedAt = &now

		return nil
	})
	if err != nil {
		return DrawWinner{}, err
	}

	return winner, nil
}
