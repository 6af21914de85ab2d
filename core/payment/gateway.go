package payment

import "context"

// Order mirrors the fields the checkout frontend needs from a gateway order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // subunits (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Gateway creates orders with an external payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error)
}
