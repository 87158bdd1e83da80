package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/repository"
)

var (
	ErrMatchNotFound        = repository.ErrMatchNotFound
	ErrMatchAlreadyFinished = repository.ErrMatchAlreadyFinished
	ErrNoOpenMatch          = repository.ErrNoOpenMatch
	ErrPlayerNotFound       = repository.ErrPlayerNotFound
	ErrPredictionsClosed    = errors.New("predictions are closed for this match")
)

type MatchRepository interface {
	CreateMatch(ctx context.Context, match domain.Match) (domain.Match, error)
	GetMatchByID(ctx context.Context, id uint) (domain.Match, error)
	ListMatches(ctx context.Context) ([]domain.Match, error)
	FindNextOpenMatch(ctx context.Context) (domain.Match, error)
	LockMatch(ctx context.Context, id uint) error
	CreatePlayer(ctx context.Context, player domain.Player) (domain.Player, error)
	GetPlayersByIDs(ctx context.Context, ids []uint) ([]domain.Player, error)
	SetCandidates(ctx context.Context, matchID uint, playerIDs []uint) error
	GetCandidateIDs(ctx context.Context, matchID uint) ([]uint, error)
	RecordScorers(ctx context.Context, matchID uint, playerIDs []uint) error
	GetScorerIDs(ctx context.Context, matchID uint) ([]uint, error)
	UpsertPrediction(ctx context.Context, userID, matchID uint, homeScore, awayScore int) (domain.Prediction, error)
	ListPredictionsByUser(ctx context.Context, userID uint) ([]domain.Prediction, error)
}

type MatchService struct {
	repo MatchRepository
}

func NewMatchService(repo MatchRepository) *MatchService {
	return &MatchService{
		repo: repo,
	}
}

func (s *MatchService) CreateMatch(ctx context.Context, match domain.Match) (domain.Match, error) {
	created, err := s.repo.CreateMatch(ctx, match)
	if err != nil {
		return domain.Match{}, fmt.Errorf("s.repo.CreateMatch -> %w", err)
	}

	return created, nil
}

// GetMatch loads one match with its candidate and actual scorer players.
func (s *MatchService) GetMatch(ctx context.Context, id uint) (domain.Match, error) {
	match, err := s.repo.GetMatchByID(ctx, id)
	if err != nil {
		return domain.Match{}, fmt.Errorf("s.repo.GetMatchByID -> %w", err)
	}

	candidateIDs, err := s.repo.GetCandidateIDs(ctx, id)
	if err != nil {
		return domain.Match{}, fmt.Errorf("s.repo.GetCandidateIDs -> %w", err)
	}
	if len(candidateIDs) > 0 {
		match.Candidates, err = s.repo.GetPlayersByIDs(ctx, candidateIDs)
		if err != nil {
			return domain.Match{}, fmt.Errorf("s.repo.GetPlayersByIDs -> %w", err)
		}
	}

	scorerIDs, err := s.repo.GetScorerIDs(ctx, id)
	if err != nil {
		return domain.Match{}, fmt.Errorf("s.repo.GetScorerIDs -> %w", err)
	}
	if len(scorerIDs) > 0 {
		match.Scorers, err = s.repo.GetPlayersByIDs(ctx, scorerIDs)
		if err != nil {
			return domain.Match{}, fmt.Errorf("s.repo.GetPlayersByIDs -> %w", err)
		}
	}

	return match, nil
}

func (s *MatchService) ListMatches(ctx context.Context) ([]domain.Match, error) {
	matches, err := s.repo.ListMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListMatches -> %w", err)
	}

	return matches, nil
}

func (s *MatchService) LockMatch(ctx context.Context, id uint) error {
	if err := s.repo.LockMatch(ctx, id); err != nil {
		return fmt.Errorf("s.repo.LockMatch -> %w", err)
	}

	return nil
}

func (s *MatchService) CreatePlayer(ctx context.Context, player domain.Player) (domain.Player, error) {
	created, err := s.repo.CreatePlayer(ctx, player)
	if err != nil {
		return domain.Player{}, fmt.Errorf("s.repo.CreatePlayer -> %w", err)
	}

	return created, nil
}

// SetCandidates replaces the curated candidate scorer set for a match. All
// referenced players must exist.
func (s *MatchService) SetCandidates(ctx context.Context, matchID uint, playerIDs []uint) error {
	if _, err := s.repo.GetMatchByID(ctx, matchID); err != nil {
		return fmt.Errorf("s.repo.GetMatchByID -> %w", err)
	}

	players, err := s.repo.GetPlayersByIDs(ctx, playerIDs)
	if err != nil {
		return fmt.Errorf("s.repo.GetPlayersByIDs -> %w", err)
	}
	if len(players) != len(playerIDs) {
		return ErrPlayerNotFound
	}

	if err = s.repo.SetCandidates(ctx, matchID, playerIDs); err != nil {
		return fmt.Errorf("s.repo.SetCandidates -> %w", err)
	}

	return nil
}

// RecordScorers replaces the actual scorer set for a match. All referenced
// players must exist.
func (s *MatchService) RecordScorers(ctx context.Context, matchID uint, playerIDs []uint) error {
	if _, err := s.repo.GetMatchByID(ctx, matchID); err != nil {
		return fmt.Errorf("s.repo.GetMatchByID -> %w", err)
	}

	players, err := s.repo.GetPlayersByIDs(ctx, playerIDs)
	if err != nil {
		return fmt.Errorf("s.repo.GetPlayersByIDs -> %w", err)
	}
	if len(players) != len(playerIDs) {
		return ErrPlayerNotFound
	}

	if err = s.repo.RecordScorers(ctx, matchID, playerIDs); err != nil {
		return fmt.Errorf("s.repo.RecordScorers -> %w", err)
	}

	return nil
}

// SubmitPrediction creates or updates the user's prediction while the match
// still accepts them. Locked, finished and kicked-off matches reject it.
func (s *MatchService) SubmitPrediction(ctx context.Context, userID, matchID uint, homeScore, awayScore int) (domain.Prediction, error) {
	match, err := s.repo.GetMatchByID(ctx, matchID)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("s.repo.GetMatchByID -> %w", err)
	}

	if !match.AcceptsPredictions(time.Now()) {
		return domain.Prediction{}, ErrPredictionsClosed
	}

	prediction, err := s.repo.UpsertPrediction(ctx, userID, matchID, homeScore, awayScore)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("s.repo.UpsertPrediction -> %w", err)
	}

	return prediction, nil
}

func (s *MatchService) ListPredictions(ctx context.Context, userID uint) ([]domain.Prediction, error) {
	predictions, err := s.repo.ListPredictionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListPredictionsByUser -> %w", err)
	}

	return predictions, nil
}
