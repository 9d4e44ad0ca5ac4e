package models

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/collab"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/sirupsen/logrus"
)

// SubscriptionModel owns plan entitlements and the call-minute ledger.
type SubscriptionModel struct {
	app     *config.AppConfig
	ds      *storage.Facade
	payment collab.Payment
	logger  *logrus.Entry
	now     func() time.Time
}

func NewSubscriptionModel(app *config.AppConfig, ds *storage.Facade, payment collab.Payment, logger *logrus.Logger) *SubscriptionModel {
	return &SubscriptionModel{
		app:     app,
		ds:      ds,
		payment: payment,
		logger:  logger.WithField("model", "subscription"),
		now:     domain.Now,
	}
}

// GetUserSubscription returns the subscription currently in force. A user
// without a row, or whose row lapsed, gets the computed free plan, which is
// not stored.
func (m *SubscriptionModel) GetUserSubscription(ctx context.Context, userId string) *domain.Subscription {
	s := m.ds.GetSubscription(ctx, userId)
	if s == nil || !s.IsActive(m.now()) {
		return domain.DefaultSubscription(userId)
	}
	return s
}

// ActivateFreePlan stores the free plan for the user. It is a no-op for a
// user already on an active free plan.
func (m *SubscriptionModel) ActivateFreePlan(ctx context.Context, userId string) (*domain.Subscription, error) {
	if userId == "" {
		return nil, domain.NewValidationFault(config.UserIdRequired)
	}
	now := m.now()
	s, err := m.ds.LookupSubscription(ctx, userId)
	if err != nil {
		return nil, err
	}
	if s != nil && s.IsActive(now) {
		if s.PlanId == domain.PlanFree {
			return s, nil
		}
		return nil, domain.NewValidationFault("user already has an active %s subscription", s.PlanId)
	}

	plan, _ := domain.GetPlan(domain.PlanFree)
	s = domain.NewSubscription(userId, plan, now)
	if err := m.ds.SaveSubscription(ctx, s); err != nil {
		return nil, err
	}
	m.logger.WithField("userId", userId).Infoln("free plan activated")
	return s, nil
}

type PaidSubscriptionReq struct {
	UserId                string              `json:"-"`
	PlanId                domain.PlanId       `json:"planId"`
	BillingCycle          domain.BillingCycle `json:"billingCycle"`
	PaymentCustomerId     *string             `json:"paymentCustomerId"`
	PaymentSubscriptionId *string             `json:"paymentSubscriptionId"`
}

// CreatePaidSubscription replaces whatever the user had with a paid plan.
// Usage starts from zero.
func (m *SubscriptionModel) CreatePaidSubscription(ctx context.Context, req *PaidSubscriptionReq) (*domain.Subscription, error) {
	if req.UserId == "" {
		return nil, domain.NewValidationFault(config.UserIdRequired)
	}
	plan, ok := domain.GetPlan(req.PlanId)
	if !ok || plan.Id == domain.PlanFree {
		return nil, domain.NewValidationFault("%s: %q", config.InvalidPlan, req.PlanId)
	}
	switch req.BillingCycle {
	case "":
	case domain.BillingMonthly, domain.BillingYearly:
		plan.BillingCycle = req.BillingCycle
	default:
		return nil, domain.NewValidationFault("unknown billing cycle %q", req.BillingCycle)
	}

	s := domain.NewSubscription(req.UserId, plan, m.now())
	s.PaymentCustomerId = req.PaymentCustomerId
	s.PaymentSubscriptionId = req.PaymentSubscriptionId
	if err := m.ds.SaveSubscription(ctx, s); err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"userId":       req.UserId,
		"plan":         plan.Id,
		"billingCycle": plan.BillingCycle,
	}).Infoln("paid subscription created")
	return s, nil
}

// GrantPremiumSubscription installs an unlimited, non-expiring plan without
// going through payment.
func (m *SubscriptionModel) GrantPremiumSubscription(ctx context.Context, userId, grantedBy string) (*domain.Subscription, error) {
	if userId == "" {
		return nil, domain.NewValidationFault(config.UserIdRequired)
	}
	s := domain.PremiumGrant(userId, m.now())
	if err := m.ds.SaveSubscription(ctx, s); err != nil {
		return nil, err
	}
	m.logger.WithFields(logrus.Fields{
		"userId":    userId,
		"grantedBy": grantedBy,
	}).Warnln("premium subscription granted by admin")
	return s, nil
}

// CancelSubscription flips the stored row to cancelled. Rows are never deleted.
func (m *SubscriptionModel) CancelSubscription(ctx context.Context, userId string) (*domain.Subscription, error) {
	s, err := m.ds.LookupSubscription(ctx, userId)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewNotFoundFault("user %s has no subscription", userId)
	}
	if s.Status == domain.SubscriptionCancelled {
		return s, nil
	}

	if s.PaymentSubscriptionId != nil && *s.PaymentSubscriptionId != "" {
		if err := m.payment.CancelSubscription(ctx, *s.PaymentSubscriptionId); err != nil {
			m.logger.WithError(err).WithField("userId", userId).Errorln("payment provider cancel failed")
		}
	}

	now := m.now()
	s.Status = domain.SubscriptionCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
	if err := m.ds.SaveSubscription(ctx, s); err != nil {
		return nil, err
	}
	m.logger.WithField("userId", userId).Infoln("subscription cancelled")
	return s, nil
}

// DowngradeLapsed moves every active subscription that expired before now
// back to the free plan and reports how many were changed.
func (m *SubscriptionModel) DowngradeLapsed(ctx context.Context) int {
	now := m.now()
	plan, _ := domain.GetPlan(domain.PlanFree)

	var n int
	for _, s := range m.ds.GetSubscriptionsExpiringBefore(ctx, now) {
		if s.Status != domain.SubscriptionActive || s.AdminGranted {
			continue
		}
		if err := m.ds.SaveSubscription(ctx, domain.NewSubscription(s.UserId, plan, now)); err != nil {
			continue
		}
		m.logger.WithFields(logrus.Fields{
			"userId": s.UserId,
			"plan":   s.PlanId,
		}).Infoln("expired subscription moved to free plan")
		n++
	}
	return n
}

// ledger returns the stored row usage should be charged to, storing the
// free plan first when the user has no active row. A failed read aborts
// so a stored plan is never overwritten.
func (m *SubscriptionModel) ledger(ctx context.Context, userId string) (*domain.Subscription, error) {
	now := m.now()
	s, err := m.ds.LookupSubscription(ctx, userId)
	if err != nil {
		return nil, err
	}
	if s != nil && s.IsActive(now) {
		return s, nil
	}
	plan, _ := domain.GetPlan(domain.PlanFree)
	s = domain.NewSubscription(userId, plan, now)
	if err := m.ds.SaveSubscription(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
