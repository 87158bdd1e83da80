package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	POSEventOrderCreated = "order.created"
	POSEventOrderDeleted = "order.deleted"
)

type POSEventRequest struct {
	Type        string  `json:"type"`
	OrderRef    string  `json:"order_ref"`
	CustomerRef string  `json:"customer_ref"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (req *POSEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Type, validation.Required, validation.In(POSEventOrderCreated, POSEventOrderDeleted)),
		validation.Field(&req.OrderRef, validation.Required),
		validation.Field(&req.Amount, validation.Min(0.0)),
	)
}
