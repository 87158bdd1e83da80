package repository

import (
	"context"
	"fmt"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository/dao"
)

var (
	ErrMatchNotFound        = dao.ErrMatchNotFound
	ErrMatchAlreadyFinished = dao.ErrMatchAlreadyFinished
	ErrMatchLocked          = dao.ErrMatchLocked
	ErrPredictionFinal      = dao.ErrPredictionFinal
	ErrNoOpenMatch          = dao.ErrNoOpenMatch
	ErrPlayerNotFound       = dao.ErrPlayerNotFound
)

type MatchDAO interface {
	InsertMatch(ctx context.Context, match dao.Match) (dao.Match, error)
	GetMatchByID(ctx context.Context, id uint) (dao.Match, error)
	ListMatches(ctx context.Context) ([]dao.Match, error)
	FindNextOpenMatch(ctx context.Context) (dao.Match, error)
	LockMatch(ctx context.Context, id uint) error
	FinalizeResult(ctx context.Context, id uint, homeScore, awayScore int) (dao.Match, error)
	InsertPlayer(ctx context.Context, player dao.Player) (dao.Player, error)
	FindPlayersByIDs(ctx context.Context, ids []uint) ([]dao.Player, error)
	SetCandidates(ctx context.Context, matchID uint, playerIDs []uint) error
	GetCandidateIDs(ctx context.Context, matchID uint) ([]uint, error)
	RecordScorers(ctx context.Context, matchID uint, playerIDs []uint) error
	GetScorerIDs(ctx context.Context, matchID uint) ([]uint, error)
	UpsertPrediction(ctx context.Context, userID, matchID uint, homeScore, awayScore int) (dao.Prediction, error)
	ListPredictionsByUser(ctx context.Context, userID uint) ([]dao.Prediction, error)
	ListUnscoredPredictions(ctx context.Context, matchID uint) ([]dao.Prediction, error)
	ApplyScoring(ctx context.Context, scores []dao.PredictionScore, rewards []dao.RewardCode) error
}

type MatchRepository struct {
	dao MatchDAO
}

func NewMatchRepository(dao MatchDAO) *MatchRepository {
	return &MatchRepository{
		dao: dao,
	}
}

func (r *MatchRepository) CreateMatch(ctx context.Context, match domain.Match) (domain.Match, error) {
	created, err := r.dao.InsertMatch(ctx, r.matchDomainToDao(match))
	if err != nil {
		return domain.Match{}, fmt.Errorf("r.dao.InsertMatch -> %w", err)
	}

	return r.matchDaoToDomain(created), nil
}

func (r *MatchRepository) GetMatchByID(ctx context.Context, id uint) (domain.Match, error) {
	match, err := r.dao.GetMatchByID(ctx, id)
	if err != nil {
		return domain.Match{}, fmt.Errorf("r.dao.GetMatchByID -> %w", err)
	}

	return r.matchDaoToDomain(match), nil
}

func (r *MatchRepository) ListMatches(ctx context.Context) ([]domain.Match, error) {
	matchesDAO, err := r.dao.ListMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListMatches -> %w", err)
	}

	matches := make([]domain.Match, len(matchesDAO))
	for i, m := range matchesDAO {
		matches[i] = r.matchDaoToDomain(m)
	}

	return matches, nil
}

func (r *MatchRepository) FindNextOpenMatch(ctx context.Context) (domain.Match, error) {
	match, err := r.dao.FindNextOpenMatch(ctx)
	if err != nil {
		return domain.Match{}, fmt.Errorf("r.dao.FindNextOpenMatch -> %w", err)
	}

	return r.matchDaoToDomain(match), nil
}

func (r *MatchRepository) LockMatch(ctx context.Context, id uint) error {
	if err := r.dao.LockMatch(ctx, id); err != nil {
		return fmt.Errorf("r.dao.LockMatch -> %w", err)
	}

	return nil
}

func (r *MatchRepository) FinalizeResult(ctx context.Context, id uint, homeScore, awayScore int) (domain.Match, error) {
	match, err := r.dao.FinalizeResult(ctx, id, homeScore, awayScore)
	if err != nil {
		return domain.Match{}, fmt.Errorf("r.dao.FinalizeResult -> %w", err)
	}

	return r.matchDaoToDomain(match), nil
}

func (r *MatchRepository) CreatePlayer(ctx context.Context, player domain.Player) (domain.Player, error) {
	created, err := r.dao.InsertPlayer(ctx, dao.Player{
		Name:   player.Name,
		Number: player.Number,
		Team:   player.Team,
	})
	if err != nil {
		return domain.Player{}, fmt.Errorf("r.dao.InsertPlayer -> %w", err)
	}

	return r.playerDaoToDomain(created), nil
}

func (r *MatchRepository) GetPlayersByIDs(ctx context.Context, ids []uint) ([]domain.Player, error) {
	playersDAO, err := r.dao.FindPlayersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPlayersByIDs -> %w", err)
	}

	players := make([]domain.Player, len(playersDAO))
	for i, p := range playersDAO {
		players[i] = r.playerDaoToDomain(p)
	}

	return players, nil
}

func (r *MatchRepository) SetCandidates(ctx context.Context, matchID uint, playerIDs []uint) error {
	if err := r.dao.SetCandidates(ctx, matchID, playerIDs); err != nil {
		return fmt.Errorf("r.dao.SetCandidates -> %w", err)
	}

	return nil
}

func (r *MatchRepository) GetCandidateIDs(ctx context.Context, matchID uint) ([]uint, error) {
	ids, err := r.dao.GetCandidateIDs(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetCandidateIDs -> %w", err)
	}

	return ids, nil
}

func (r *MatchRepository) RecordScorers(ctx context.Context, matchID uint, playerIDs []uint) error {
	if err := r.dao.RecordScorers(ctx, matchID, playerIDs); err != nil {
		return fmt.Errorf("r.dao.RecordScorers -> %w", err)
	}

	return nil
}

func (r *MatchRepository) GetScorerIDs(ctx context.Context, matchID uint) ([]uint, error) {
	ids, err := r.dao.GetScorerIDs(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetScorerIDs -> %w", err)
	}

	return ids, nil
}

func (r *MatchRepository) UpsertPrediction(ctx context.Context, userID, matchID uint, homeScore, awayScore int) (domain.Prediction, error) {
	prediction, err := r.dao.UpsertPrediction(ctx, userID, matchID, homeScore, awayScore)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("r.dao.UpsertPrediction -> %w", err)
	}

	return r.predictionDaoToDomain(prediction), nil
}

func (r *MatchRepository) ListPredictionsByUser(ctx context.Context, userID uint) ([]domain.Prediction, error) {
	predictionsDAO, err := r.dao.ListPredictionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListPredictionsByUser -> %w", err)
	}

	predictions := make([]domain.Prediction, len(predictionsDAO))
	for i, p := range predictionsDAO {
		predictions[i] = r.predictionDaoToDomain(p)
	}

	return predictions, nil
}

func (r *MatchRepository) ListUnscoredPredictions(ctx context.Context, matchID uint) ([]domain.Prediction, error) {
	predictionsDAO, err := r.dao.ListUnscoredPredictions(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListUnscoredPredictions -> %w", err)
	}

	predictions := make([]domain.Prediction, len(predictionsDAO))
	for i, p := range predictionsDAO {
		predictions[i] = r.predictionDaoToDomain(p)
	}

	return predictions, nil
}

// ScoredPrediction pairs a prediction with its computed outcome for the
// scoring write.
type ScoredPrediction struct {
	PredictionID  uint
	Points        int
	IsExact       bool
	CorrectWinner bool
}

func (r *MatchRepository) ApplyScoring(ctx context.Context, scores []ScoredPrediction, rewards []domain.RewardCode) error {
	scoresDAO := make([]dao.PredictionScore, len(scores))
	for i, s := range scores {
		scoresDAO[i] = dao.PredictionScore{
			PredictionID:  s.PredictionID,
			Points:        s.Points,
			IsExact:       s.IsExact,
			CorrectWinner: s.CorrectWinner,
		}
	}

	rewardsDAO := make([]dao.RewardCode, len(rewards))
	for i, reward := range rewards {
		rewardsDAO[i] = dao.RewardCode{
			Code:      reward.Code,
			UserID:    reward.UserID,
			MatchID:   reward.MatchID,
			Kind:      string(reward.Kind),
			ExpiresAt: reward.ExpiresAt,
		}
	}

	if err := r.dao.ApplyScoring(ctx, scoresDAO, rewardsDAO); err != nil {
		return fmt.Errorf("r.dao.ApplyScoring -> %w", err)
	}

	return nil
}

func (r *MatchRepository) matchDomainToDao(m domain.Match) dao.Match {
	return dao.Match{
		ID:         m.ID,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		Kickoff:    m.Kickoff,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
		IsFinished: m.IsFinished,
		IsLocked:   m.IsLocked,
	}
}

func (r *MatchRepository) matchDaoToDomain(m dao.Match) domain.Match {
	return domain.Match{
		ID:         m.ID,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		Kickoff:    m.Kickoff,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
		IsFinished: m.IsFinished,
		IsLocked:   m.IsLocked,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *MatchRepository) playerDaoToDomain(p dao.Player) domain.Player {
	return domain.Player{
		ID:     p.ID,
		Name:   p.Name,
		Number: p.Number,
		Team:   p.Team,
	}
}

func (r *MatchRepository) predictionDaoToDomain(p dao.Prediction) domain.Prediction {
	return domain.Prediction{
		ID:            p.ID,
		UserID:        p.UserID,
		MatchID:       p.MatchID,
		HomeScore:     p.HomeScore,
		AwayScore:     p.AwayScore,
		Points:        p.Points,
		IsExact:       p.IsExact,
		CorrectWinner: p.CorrectWinner,
		ScoredAt:      p.ScoredAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
