package redisdriver

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/redis/go-redis/v9"
)

const (
	subscriptionKind  = "subscription"
	subscriptionIndex = "subscriptions"
	subscriptionsExp  = "subscriptions:expiry"
)

func (d *Driver) GetSubscription(ctx context.Context, userId string) (*domain.Subscription, error) {
	return getDoc[domain.Subscription](ctx, d.rc, d.key(subscriptionKind, userId))
}

func (d *Driver) UpsertSubscription(ctx context.Context, s *domain.Subscription) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = d.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, d.key(subscriptionKind, s.UserId), raw, 0)
		pipe.SAdd(ctx, d.key(subscriptionIndex), s.UserId)
		if s.ExpiresAt != nil {
			pipe.ZAdd(ctx, d.key(subscriptionsExp), redis.Z{Score: score(*s.ExpiresAt), Member: s.UserId})
		} else {
			pipe.ZRem(ctx, d.key(subscriptionsExp), s.UserId)
		}
		return nil
	})
	return err
}

func (d *Driver) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	ids, err := d.rc.SMembers(ctx, d.key(subscriptionIndex)).Result()
	if err != nil {
		return nil, err
	}
	subs, err := getDocs[domain.Subscription](ctx, d, subscriptionKind, ids)
	if err != nil {
		return nil, err
	}
	backend.SortSubscriptions(subs)
	return subs, nil
}

func (d *Driver) CountSubscriptionsByPlan(ctx context.Context) (map[domain.PlanId]int64, error) {
	subs, err := d.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.PlanId]int64)
	for _, s := range subs {
		if s.Status == domain.SubscriptionActive {
			counts[s.PlanId]++
		}
	}
	return counts, nil
}

func (d *Driver) ListSubscriptionsExpiringBefore(ctx context.Context, t time.Time) ([]*domain.Subscription, error) {
	ids, err := d.rc.ZRangeByScore(ctx, d.key(subscriptionsExp), &redis.ZRangeBy{
		Min: "-inf",
		Max: before(t),
	}).Result()
	if err != nil {
		return nil, err
	}

	subs, err := getDocs[domain.Subscription](ctx, d, subscriptionKind, ids)
	if err != nil {
		return nil, err
	}
	active := subs[:0]
	for _, s := range subs {
		if s.Status == domain.SubscriptionActive {
			active = append(active, s)
		}
	}
	backend.SortSubscriptions(active)
	return active, nil
}

// IncrementCallMinutes reads, checks and writes under WATCH; a concurrent
// writer aborts the EXEC and the whole check is retried.
func (d *Driver) IncrementCallMinutes(ctx context.Context, userId string, minutes int64) (bool, error) {
	key := d.key(subscriptionKind, userId)
	applied := false

	err := d.watch(ctx, func(tx *redis.Tx) error {
		applied = false
		s, err := getDoc[domain.Subscription](ctx, tx, key)
		if err != nil || s == nil {
			return err
		}
		if !s.IsUnlimited() && s.CallMinutes-s.CallMinutesUsed < minutes {
			return nil
		}

		s.CallMinutesUsed += minutes
		s.UpdatedAt = domain.Now()
		raw, err := json.Marshal(s)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		if err == nil {
			applied = true
		}
		return err
	}, key)
	if err != nil {
		return false, err
	}
	return applied, nil
}
