package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/pkg/shortcode"
	"github.com/lestade/fanzone-api/internal/repository"
)

// Exact-score reward codes stay redeemable for 30 days.
const rewardValidity = 30 * 24 * time.Hour

type ScoringMatchRepository interface {
	FinalizeResult(ctx context.Context, id uint, homeScore, awayScore int) (domain.Match, error)
	ListUnscoredPredictions(ctx context.Context, matchID uint) ([]domain.Prediction, error)
	ApplyScoring(ctx context.Context, scores []repository.ScoredPrediction, rewards []domain.RewardCode) error
}

type ScoringService struct {
	repo ScoringMatchRepository
}

func NewScoringService(repo ScoringMatchRepository) *ScoringService {
	return &ScoringService{
		repo: repo,
	}
}

// ScoreMatch finalizes the result and grades every still-unscored
// prediction on the match. Exact scores earn a one-per-user free item
// reward alongside their points.
//
// Re-running over an already finished match with the same score is safe:
// already-scored rows are skipped and reward uniqueness absorbs duplicate
// grants.
func (s *ScoringService) ScoreMatch(ctx context.Context, matchID uint, homeScore, awayScore int) (domain.ScoringSummary, error) {
	match, err := s.repo.FinalizeResult(ctx, matchID, homeScore, awayScore)
	if err != nil {
		return domain.ScoringSummary{}, fmt.Errorf("s.repo.FinalizeResult -> %w", err)
	}

	predictions, err := s.repo.ListUnscoredPredictions(ctx, matchID)
	if err != nil {
		return domain.ScoringSummary{}, fmt.Errorf("s.repo.ListUnscoredPredictions -> %w", err)
	}

	summary := domain.ScoringSummary{MatchID: match.ID}
	if len(predictions) == 0 {
		return summary, nil
	}

	scores := make([]repository.ScoredPrediction, 0, len(predictions))
	var rewards []domain.RewardCode
	expiresAt := time.Now().Add(rewardValidity)

	for _, prediction := range predictions {
		points, exact, correctWinner := prediction.Grade(homeScore, awayScore)

		scores = append(scores, repository.ScoredPrediction{
			PredictionID:  prediction.ID,
			Points:        points,
			IsExact:       exact,
			CorrectWinner: correctWinner,
		})

		if exact {
			code, err := shortcode.New(shortcode.DefaultLength)
			if err != nil {
				return domain.ScoringSummary{}, fmt.Errorf("shortcode.New -> %w", err)
			}

			rewards = append(rewards, domain.RewardCode{
				Code:      code,
				UserID:    prediction.UserID,
				MatchID:   matchID,
				Kind:      domain.RewardFreeItem,
				ExpiresAt: expiresAt,
			})

			summary.ExactCount++
		}
	}

	if err = s.repo.ApplyScoring(ctx, scores, rewards); err != nil {
		return domain.ScoringSummary{}, fmt.Errorf("s.repo.ApplyScoring -> %w", err)
	}

	summary.TotalScored = len(scores)

	return summary, nil
}
