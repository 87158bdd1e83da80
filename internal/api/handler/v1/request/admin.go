package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// PerformDrawRequest with a zero year/week targets the week that just
// ended; winner count and prizes fall back to the configured defaults.
type PerformDrawRequest struct {
	Year        int      `json:"year"`
	Week        int      `json:"week"`
	WinnerCount int      `json:"winner_count"`
	Prizes      []string `json:"prizes"`
}

func (req *PerformDrawRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Week, validation.Min(0), validation.Max(53)),
		validation.Field(&req.WinnerCount, validation.Min(0)),
	)
}

type ReversePurchaseRequest struct {
	CustomerRef string `json:"customer_ref"`
	OrderRef    string `json:"order_ref"`
}

func (req *ReversePurchaseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CustomerRef, validation.Required),
		validation.Field(&req.OrderRef, validation.Required),
	)
}
