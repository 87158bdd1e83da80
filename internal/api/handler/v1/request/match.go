package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateMatchRequest struct {
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Kickoff  time.Time `json:"kickoff"`
}

func (req *CreateMatchRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.HomeTeam, validation.Required),
		validation.Field(&req.AwayTeam, validation.Required),
		validation.Field(&req.Kickoff, validation.Required),
	)
}

type PredictionRequest struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
}

func (req *PredictionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.HomeScore, validation.NotNil, validation.Min(0)),
		validation.Field(&req.AwayScore, validation.NotNil, validation.Min(0)),
	)
}

type MatchResultRequest struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
}

func (req *MatchResultRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.HomeScore, validation.NotNil, validation.Min(0)),
		validation.Field(&req.AwayScore, validation.NotNil, validation.Min(0)),
	)
}

type CreatePlayerRequest struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
	Team   string `json:"team"`
}

func (req *CreatePlayerRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required),
		validation.Field(&req.Number, validation.Min(1), validation.Max(99)),
		validation.Field(&req.Team, validation.Required),
	)
}

type CandidatesRequest struct {
	PlayerIDs []uint `json:"player_ids"`
}

func (req *CandidatesRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PlayerIDs, validation.Required, validation.Length(1, 0)),
	)
}

// ScorersRequest allows an empty list: a goalless match has no scorers.
type ScorersRequest struct {
	PlayerIDs []uint `json:"player_ids"`
}
