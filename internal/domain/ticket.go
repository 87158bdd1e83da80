package domain

import "time"

// TicketPrize is one entry of the fixed prize distribution assigned to
// winning scorer tickets.
type TicketPrize struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
	Weight int    `json:"-"`
}

// DefaultTicketPrizes is the weighted prize table for winning tickets:
// 50% small, 30% medium, 20% large.
var DefaultTicketPrizes = []TicketPrize{
	{Label: "Boisson offerte", Points: 10, Weight: 50},
	{Label: "Dessert offert", Points: 25, Weight: 30},
	{Label: "Menu offert", Points: 50, Weight: 20},
}

// ScorerTicket is a bet on one player scoring during a match. It is issued
// on a qualifying purchase, checked once when the match's scorers are
// recorded, and redeemable in person if it won.
type ScorerTicket struct {
	ID         uint       `json:"id"`
	Code       string     `json:"code"`
	UserID     *uint      `json:"user_id,omitempty"`
	MatchID    uint       `json:"match_id"`
	PlayerID   uint       `json:"player_id"`
	PlayerName string     `json:"player_name,omitempty"`
	HasWon     bool       `json:"has_won"`
	IsChecked  bool       `json:"is_checked"`
	IsRedeemed bool       `json:"is_redeemed"`
	PrizeLabel string     `json:"prize_label,omitempty"`
	PrizeValue int        `json:"prize_value,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TicketResolution reports one resolution run over a match's tickets.
type TicketResolution struct {
	MatchID      uint `json:"match_id"`
	TotalChecked int  `json:"total_checked"`
	WinnersCount int  `json:"winners_count"`
}
