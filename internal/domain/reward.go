package domain

import "time"

type RewardKind string

const (
	// RewardFreeItem is granted once per (user, match) for an exact
	// score prediction.
	RewardFreeItem RewardKind = "FREE_ITEM"
)

type RewardCode struct {
	ID         uint       `json:"id"`
	Code       string     `json:"code"`
	UserID     uint       `json:"user_id"`
	MatchID    uint       `json:"match_id"`
	Kind       RewardKind `json:"kind"`
	ExpiresAt  time.Time  `json:"expires_at"`
	IsRedeemed bool       `json:"is_redeemed"`
	RedeemedBy *uint      `json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
