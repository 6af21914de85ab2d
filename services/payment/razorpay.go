// Package paymentsvc implements the payment gateway against the Razorpay API.
package paymentsvc

import (
	"context"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/payment"
)

type razorpayGateway struct {
	client *razorpay.Client
}

var _ payment.Gateway = (*razorpayGateway)(nil)

func NewRazorpayGateway(conf *core.Config) *razorpayGateway {
	return &razorpayGateway{
		client: razorpay.NewClient(conf.Razorpay.KeyID, conf.Razorpay.KeySecret),
	}
}

func (gw razorpayGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (payment.Order, error) {
	body := map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	res, err := gw.client.Order.Create(body, nil)
	if err != nil {
		return payment.Order{}, err
	}

	order := payment.Order{
		ID:       asString(res["id"]),
		Amount:   asInt64(res["amount"]),
		Currency: asString(res["currency"]),
		Receipt:  asString(res["receipt"]),
	}
	return order, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// the API client decodes JSON numbers as float64
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
