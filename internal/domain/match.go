package domain

import "time"

type Player struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Team   string `json:"team"`
}

type Match struct {
	ID         uint      `json:"id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	Kickoff    time.Time `json:"kickoff"`
	HomeScore  *int      `json:"home_score"`
	AwayScore  *int      `json:"away_score"`
	IsFinished bool      `json:"is_finished"`
	IsLocked   bool      `json:"is_locked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Candidates []Player `json:"candidates,omitempty"`
	Scorers    []Player `json:"scorers,omitempty"`
}

// AcceptsPredictions is true until the match is locked by an admin or the
// kickoff time has passed.
func (m *Match) AcceptsPredictions(now time.Time) bool {
	if m.IsLocked || m.IsFinished {
		return false
	}

	return now.Before(m.Kickoff)
}

// Points awarded per prediction outcome.
const (
	PointsExactScore    = 5
	PointsCorrectWinner = 3
)

type Prediction struct {
	ID            uint       `json:"id"`
	UserID        uint       `json:"user_id"`
	MatchID       uint       `json:"match_id"`
	HomeScore     int        `json:"home_score"`
	AwayScore     int        `json:"away_score"`
	Points        int        `json:"points"`
	IsExact       bool       `json:"is_exact"`
	CorrectWinner bool       `json:"correct_winner"`
	ScoredAt      *time.Time `json:"scored_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Grade evaluates the prediction against the actual result and returns the
// points earned plus the exact/correct-winner flags.
//
// Exact score earns 5 points. Otherwise a matching outcome sign (home win,
// draw or away win) earns 3 points.
func (p *Prediction) Grade(actualHome, actualAway int) (points int, exact, correctWinner bool) {
	if p.HomeScore == actualHome && p.AwayScore == actualAway {
		return PointsExactScore, true, true
	}

	if sign(p.HomeScore-p.AwayScore) == sign(actualHome-actualAway) {
		return PointsCorrectWinner, false, true
	}

	return 0, false, false
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// ScoringSummary reports one scoring run over a finished match.
type ScoringSummary struct {
	MatchID     uint `json:"match_id"`
	TotalScored int  `json:"total_scored"`
	ExactCount  int  `json:"exact_count"`
}
