package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchAlreadyFinished = errors.New("match already finished")
	ErrMatchLocked          = errors.New("match is locked for predictions")
	ErrPredictionFinal      = errors.New("prediction already scored")
	ErrNoOpenMatch          = errors.New("no open match")
	ErrPlayerNotFound       = errors.New("player not found")
)

type Player struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"not null;unique"`
	Number int    `gorm:"not null"`
	Team   string `gorm:"not null"`
}

type Match struct {
	ID         uint      `gorm:"primaryKey"`
	HomeTeam   string    `gorm:"not null"`
	AwayTeam   string    `gorm:"not null"`
	Kickoff    time.Time `gorm:"not null;index"`
	HomeScore  *int
	AwayScore  *int
	IsFinished bool `gorm:"not null;default:false"`
	IsLocked   bool `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MatchCandidate is the admin-curated set of plausible scorers offered to
// the ticket engine for a match.
type MatchCandidate struct {
	ID       uint `gorm:"primaryKey"`
	MatchID  uint `gorm:"not null;uniqueIndex:idx_match_candidate"`
	PlayerID uint `gorm:"not null;uniqueIndex:idx_match_candidate"`
}

// MatchScorer records who actually scored, entered by an admin after the
// final whistle.
type MatchScorer struct {
	ID       uint `gorm:"primaryKey"`
	MatchID  uint `gorm:"not null;uniqueIndex:idx_match_scorer"`
	PlayerID uint `gorm:"not null;uniqueIndex:idx_match_scorer"`
}

type Prediction struct {
	ID      uint `gorm:"primaryKey"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_user_match"`
	MatchID uint `gorm:"not null;uniqueIndex:idx_user_match"`

	HomeScore int `gorm:"not null"`
	AwayScore int `gorm:"not null"`

	Points        int  `gorm:"not null;default:0"`
	IsExact       bool `gorm:"not null;default:false"`
	CorrectWinner bool `gorm:"not null;default:false"`
	ScoredAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type MatchDAO struct {
	db *gorm.DB
}

func NewMatchDAO(db *gorm.DB) *MatchDAO {
	return &MatchDAO{
		db: db,
	}
}

func (d *MatchDAO) InsertMatch(ctx context.Context, match Match) (Match, error) {
	result := d.db.WithContext(ctx).Create(&match)
	if result.Error != nil {
		return Match{}, result.Error
	}

	return match, nil
}

func (d *MatchDAO) GetMatchByID(ctx context.Context, id uint) (Match, error) {
	var match Match

	result := d.db.WithContext(ctx).First(&match, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Match{}, ErrMatchNotFound
		}

		return Match{}, result.Error
	}

	return match, nil
}

func (d *MatchDAO) ListMatches(ctx context.Context) ([]Match, error) {
	var matches []Match

	result := d.db.WithContext(ctx).Order("kickoff ASC").Find(&matches)
	if result.Error != nil {
		return nil, result.Error
	}

	return matches, nil
}

// FindNextOpenMatch returns the earliest match that has not been finished
// yet; scorer tickets issued on purchases attach to it.
func (d *MatchDAO) FindNextOpenMatch(ctx context.Context) (Match, error) {
	var match Match

	result := d.db.WithContext(ctx).
		Where("is_finished = ?", false).
		Order("kickoff ASC").
		First(&match)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Match{}, ErrNoOpenMatch
		}

		return Match{}, result.Error
	}

	return match, nil
}

func (d *MatchDAO) LockMatch(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).
		Model(&Match{}).
		Where("id = ?", id).
		Update("is_locked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMatchNotFound
	}

	return nil
}

// FinalizeResult marks the match finished with its final score. The
// transition is one-way: finalizing an already finished match is a no-op
// when the score matches and an error when it differs.
func (d *MatchDAO) FinalizeResult(ctx context.Context, id uint, homeScore, awayScore int) (Match, error) {
	var match Match

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}

			return err
		}

		if match.IsFinished {
			if match.HomeScore != nil && *match.HomeScore == homeScore &&
				match.AwayScore != nil && *match.AwayScore == awayScore {
				return nil
			}

			return ErrMatchAlreadyFinished
		}

		match.HomeScore = &homeScore
		match.AwayScore = &awayScore
		match.IsFinished = true
		match.IsLocked = true

		return tx.Save(&match).Error
	})
	if err != nil {
		return Match{}, err
	}

	return match, nil
}

func (d *MatchDAO) InsertPlayer(ctx context.Context, player Player) (Player, error) {
	result := d.db.WithContext(ctx).Create(&player)
	if result.Error != nil {
		return Player{}, result.Error
	}

	return player, nil
}

func (d *MatchDAO) FindPlayersByIDs(ctx context.Context, ids []uint) ([]Player, error) {
	var players []Player

	result := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&players)
	if result.Error != nil {
		return nil, result.Error
	}

	return players, nil
}

// SetCandidates replaces the curated candidate set of a match.
func (d *MatchDAO) SetCandidates(ctx context.Context, matchID uint, playerIDs []uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", matchID).Delete(&MatchCandidate{}).Error; err != nil {
			return err
		}

		for _, playerID := range playerIDs {
			if err := tx.Create(&MatchCandidate{MatchID: matchID, PlayerID: playerID}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (d *MatchDAO) GetCandidateIDs(ctx context.Context, matchID uint) ([]uint, error) {
	var ids []uint

	result := d.db.WithContext(ctx).
		Model(&MatchCandidate{}).
		Where("match_id = ?", matchID).
		Order("player_id ASC").
		Pluck("player_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

// RecordScorers replaces the recorded actual scorers of a match.
func (d *MatchDAO) RecordScorers(ctx context.Context, matchID uint, playerIDs []uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", matchID).Delete(&MatchScorer{}).Error; err != nil {
			return err
		}

		for _, playerID := range playerIDs {
			if err := tx.Create(&MatchScorer{MatchID: matchID, PlayerID: playerID}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (d *MatchDAO) GetScorerIDs(ctx context.Context, matchID uint) ([]uint, error) {
	var ids []uint

	result := d.db.WithContext(ctx).
		Model(&MatchScorer{}).
		Where("match_id = ?", matchID).
		Order("player_id ASC").
		Pluck("player_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

// UpsertPrediction creates or updates the (user, match) prediction. A
// prediction that has already been scored is final.
func (d *MatchDAO) UpsertPrediction(ctx context.Context, userID, matchID uint, homeScore, awayScore int) (Prediction, error) {
	var prediction Prediction

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND match_id = ?", userID, matchID).First(&prediction).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			prediction = Prediction{
				UserID:    userID,
				MatchID:   matchID,
				HomeScore: homeScore,
				AwayScore: awayScore,
			}

			return tx.Create(&prediction).Error
		}

		if prediction.ScoredAt != nil {
			return ErrPredictionFinal
		}

		prediction.HomeScore = homeScore
		prediction.AwayScore = awayScore

		return tx.Save(&prediction).Error
	})
	if err != nil {
		return Prediction{}, err
	}

	return prediction, nil
}

func (d *MatchDAO) ListPredictionsByUser(ctx context.Context, userID uint) ([]Prediction, error) {
	var predictions []Prediction

	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Find(&predictions)
	if result.Error != nil {
		return nil, result.Error
	}

	return predictions, nil
}

// ListUnscoredPredictions returns the predictions of a match that have
// never been through a scoring run. Scored rows are final and excluded,
// which is what makes a second scoring run a no-op.
func (d *MatchDAO) ListUnscoredPredictions(ctx context.Context, matchID uint) ([]Prediction, error) {
	var predictions []Prediction

	result := d.db.WithContext(ctx).
		Where("match_id = ? AND scored_at IS NULL", matchID).
		Find(&predictions)
	if result.Error != nil {
		return nil, result.Error
	}

	return predictions, nil
}

// PredictionScore is one scoring outcome to persist.
type PredictionScore struct {
	PredictionID  uint
	Points        int
	IsExact       bool
	CorrectWinner bool
}

// ApplyScoring writes all scoring outcomes and the reward codes earned by
// exact predictions in one transaction. Predictions already scored by a
// concurrent run are skipped (scored_at guard); rewards are deduplicated
// on (user, match, kind).
func (d *MatchDAO) ApplyScoring(ctx context.Context, scores []PredictionScore, rewards []RewardCode) error {
	now := time.Now()

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, score := range scores {
			err := tx.Model(&Prediction{}).
				Where("id = ? AND scored_at IS NULL", score.PredictionID).
				Updates(map[string]interface{}{
					"points":         score.Points,
					"is_exact":       score.IsExact,
					"correct_winner": score.CorrectWinner,
					"scored_at":      now,
				}).Error
			if err != nil {
				return err
			}
		}

		for _, reward := range rewards {
			var count int64
			err := tx.Model(&RewardCode{}).
				Where("user_id = ? AND match_id = ? AND kind = ?", reward.UserID, reward.MatchID, reward.Kind).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			reward := reward
			if err = tx.Create(&reward).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
