package storage

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
)

func (f *Facade) GetSubscription(ctx context.Context, userId string) *domain.Subscription {
	s, err := f.driver.GetSubscription(ctx, userId)
	if err != nil {
		f.logger.WithError(err).WithField("userId", userId).Errorln("failed to read subscription")
		return nil
	}
	return s
}

// LookupSubscription is GetSubscription for write paths: a missing row is
// (nil, nil) and a read failure is a BackendFault.
func (f *Facade) LookupSubscription(ctx context.Context, userId string) (*domain.Subscription, error) {
	s, err := f.driver.GetSubscription(ctx, userId)
	if err != nil {
		f.logger.WithError(err).WithField("userId", userId).Errorln("failed to read subscription")
		return nil, domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return s, nil
}

func (f *Facade) SaveSubscription(ctx context.Context, s *domain.Subscription) error {
	if err := f.driver.UpsertSubscription(ctx, s); err != nil {
		f.logger.WithError(err).WithField("userId", s.UserId).Errorln("failed to save subscription")
		return domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return nil
}

func (f *Facade) GetAllSubscriptions(ctx context.Context) []*domain.Subscription {
	subs, err := f.driver.ListSubscriptions(ctx)
	if err != nil {
		f.logger.WithError(err).Errorln("failed to list subscriptions")
		return []*domain.Subscription{}
	}
	return subs
}

// CountSubscriptionsByPlan counts active subscriptions per plan.
func (f *Facade) CountSubscriptionsByPlan(ctx context.Context) map[domain.PlanId]int64 {
	counts, err := f.driver.CountSubscriptionsByPlan(ctx)
	if err != nil {
		f.logger.WithError(err).Errorln("failed to count subscriptions")
		return map[domain.PlanId]int64{}
	}
	return counts
}

func (f *Facade) GetSubscriptionsExpiringBefore(ctx context.Context, t time.Time) []*domain.Subscription {
	subs, err := f.driver.ListSubscriptionsExpiringBefore(ctx, t)
	if err != nil {
		f.logger.WithError(err).Errorln("failed to list expiring subscriptions")
		return []*domain.Subscription{}
	}
	return subs
}

// IncrementCallMinutes atomically adds minutes when the quota allows it.
// applied is false when the subscription is missing or the quota would be
// exceeded; the stored usage is then unchanged.
func (f *Facade) IncrementCallMinutes(ctx context.Context, userId string, minutes int64) (bool, error) {
	applied, err := f.driver.IncrementCallMinutes(ctx, userId, minutes)
	if err != nil {
		f.logger.WithError(err).WithField("userId", userId).Errorln("failed to track call minutes")
		return false, domain.NewBackendFault(err, config.StorageUnavailable)
	}
	return applied, nil
}
