package models

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/sirupsen/logrus"
)

// UsageCheck is the answer to a quota question. Remaining is -1 when the
// plan has no cap.
type UsageCheck struct {
	Allowed   bool   `json:"allowed"`
	Remaining int64  `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
}

func (m *SubscriptionModel) CheckCallMinutesLimit(ctx context.Context, userId string, required int64) *UsageCheck {
	s := m.GetUserSubscription(ctx, userId)
	if s.IsUnlimited() {
		return &UsageCheck{Allowed: true, Remaining: domain.Unlimited}
	}
	remaining := s.CallMinutesRemaining()
	if remaining >= required {
		return &UsageCheck{Allowed: true, Remaining: remaining}
	}
	return &UsageCheck{Remaining: remaining, Reason: config.CallMinutesExceeded}
}

// TrackCallMinutes charges minutes to the user's ledger. The increment is
// applied only when the quota still covers it; otherwise the ledger is left
// as it was and a QuotaExceededFault carrying the remaining minutes is
// returned.
func (m *SubscriptionModel) TrackCallMinutes(ctx context.Context, userId string, minutes int64) (*domain.Subscription, error) {
	if userId == "" {
		return nil, domain.NewValidationFault(config.UserIdRequired)
	}
	if minutes <= 0 {
		return nil, domain.NewValidationFault("minutes must be positive")
	}
	if _, err := m.ledger(ctx, userId); err != nil {
		return nil, err
	}

	applied, err := m.ds.IncrementCallMinutes(ctx, userId, minutes)
	if err != nil {
		return nil, err
	}
	s := m.GetUserSubscription(ctx, userId)
	if !applied {
		m.logger.WithFields(logrus.Fields{
			"userId":    userId,
			"minutes":   minutes,
			"remaining": s.CallMinutesRemaining(),
		}).Infoln("call minutes denied")
		return nil, domain.NewQuotaExceededFault(s.CallMinutesRemaining(), config.CallMinutesExceeded)
	}
	return s, nil
}

// CanPerformAction answers a feature gate. Every action has to be listed in
// domain.Features.Allows; anything else is denied.
func (m *SubscriptionModel) CanPerformAction(ctx context.Context, userId string, action domain.Action) (bool, string) {
	s := m.GetUserSubscription(ctx, userId)
	allowed, known := s.Features.Allows(action)
	switch {
	case !known:
		m.logger.WithField("action", action).Warnln("unknown feature gate requested")
		return false, "unknown action " + string(action)
	case !allowed:
		return false, config.FeatureNotInPlan
	}
	return true, ""
}

// RequireAction is CanPerformAction as an error.
func (m *SubscriptionModel) RequireAction(ctx context.Context, userId string, action domain.Action) error {
	if ok, reason := m.CanPerformAction(ctx, userId, action); !ok {
		return domain.NewQuotaExceededFault(0, "%s: %s", reason, action)
	}
	return nil
}

func (m *SubscriptionModel) CheckParticipantsLimit(ctx context.Context, userId string, count int64) *UsageCheck {
	s := m.GetUserSubscription(ctx, userId)
	if s.MaxParticipants == domain.Unlimited {
		return &UsageCheck{Allowed: true, Remaining: domain.Unlimited}
	}
	remaining := max(s.MaxParticipants-count, 0)
	if count <= s.MaxParticipants {
		return &UsageCheck{Allowed: true, Remaining: remaining}
	}
	return &UsageCheck{Remaining: remaining, Reason: config.ParticipantsExceeded}
}

func (m *SubscriptionModel) GetPlans() []domain.Plan {
	return domain.Plans()
}

type UsageAnalytics struct {
	ActiveByPlan map[domain.PlanId]int64 `json:"activeByPlan"`
	TotalActive  int64                   `json:"totalActive"`
	Storage      *storage.Stats          `json:"storage,omitempty"`
}

func (m *SubscriptionModel) UsageAnalytics(ctx context.Context) (*UsageAnalytics, error) {
	stats, err := m.ds.Stats(ctx)
	if err != nil {
		return nil, err
	}
	res := &UsageAnalytics{
		ActiveByPlan: stats.ActiveSubscriptions,
		Storage:      stats,
	}
	for _, n := range res.ActiveByPlan {
		res.TotalActive += n
	}
	return res, nil
}
