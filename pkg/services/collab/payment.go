package collab

import (
	"context"
	"errors"

	"github.com/mynaparrot/meethub-server/pkg/domain"
)

var ErrPaymentsDisabled = errors.New("payment provider is not configured")

type Checkout struct {
	CustomerId     string `json:"customerId"`
	SubscriptionId string `json:"subscriptionId"`
	Url            string `json:"url"`
}

// Payment is a placeholder for a billing provider.
type Payment interface {
	CreateCheckout(ctx context.Context, userId string, plan domain.PlanId) (*Checkout, error)
	CancelSubscription(ctx context.Context, paymentSubscriptionId string) error
}

type NoopPayment struct{}

func NewNoopPayment() *NoopPayment {
	return &NoopPayment{}
}

func (NoopPayment) CreateCheckout(context.Context, string, domain.PlanId) (*Checkout, error) {
	return nil, ErrPaymentsDisabled
}

func (NoopPayment) CancelSubscription(context.Context, string) error {
	return nil
}
