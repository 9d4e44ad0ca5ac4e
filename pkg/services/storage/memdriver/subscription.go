package memdriver

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func (d *Driver) GetSubscription(_ context.Context, userId string) (*domain.Subscription, error) {
	return get[domain.Subscription](d.subs, userId)
}

func (d *Driver) UpsertSubscription(_ context.Context, s *domain.Subscription) error {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	return put(d.subs, s.UserId, s)
}

func (d *Driver) ListSubscriptions(_ context.Context) ([]*domain.Subscription, error) {
	subs, err := all[domain.Subscription](d.subs, nil)
	if err != nil {
		return nil, err
	}
	backend.SortSubscriptions(subs)
	return subs, nil
}

func (d *Driver) CountSubscriptionsByPlan(_ context.Context) (map[domain.PlanId]int64, error) {
	subs, err := all[domain.Subscription](d.subs, func(s *domain.Subscription) bool {
		return s.Status == domain.SubscriptionActive
	})
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.PlanId]int64)
	for _, s := range subs {
		counts[s.PlanId]++
	}
	return counts, nil
}

func (d *Driver) ListSubscriptionsExpiringBefore(_ context.Context, t time.Time) ([]*domain.Subscription, error) {
	subs, err := all[domain.Subscription](d.subs, func(s *domain.Subscription) bool {
		return s.Status == domain.SubscriptionActive && s.ExpiresAt != nil && s.ExpiresAt.Before(t)
	})
	if err != nil {
		return nil, err
	}
	backend.SortSubscriptions(subs)
	return subs, nil
}

func (d *Driver) IncrementCallMinutes(_ context.Context, userId string, minutes int64) (bool, error) {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()

	s, err := get[domain.Subscription](d.subs, userId)
	if err != nil || s == nil {
		return false, err
	}
	if !s.IsUnlimited() && s.CallMinutes-s.CallMinutesUsed < minutes {
		return false, nil
	}
	s.CallMinutesUsed += minutes
	s.UpdatedAt = domain.Now()
	return true, put(d.subs, userId, s)
}
