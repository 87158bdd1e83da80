package response

import "github.com/lestade/fanzone-api/internal/domain"

type LoyaltyResponse struct {
	Account      domain.LoyaltyAccount       `json:"account"`
	Transactions []domain.LoyaltyTransaction `json:"transactions"`
}

type MatchResultResponse struct {
	Scoring domain.ScoringSummary   `json:"scoring"`
	Tickets domain.TicketResolution `json:"tickets"`
}
