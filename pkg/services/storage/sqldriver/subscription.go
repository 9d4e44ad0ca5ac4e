package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

func scanSubscription(s rowScanner) (*domain.Subscription, error) {
	sub := new(domain.Subscription)
	var plan, status, cycle string
	var features []byte
	var startedAt, expiresAt, cancelledAt, createdAt, updatedAt nullTime
	var customerId, subscriptionId sql.NullString

	err := s.Scan(&sub.UserId, &plan, &status, &cycle, &sub.CallMinutes, &sub.CallMinutesUsed,
		&sub.MaxParticipants, &features, &startedAt, &expiresAt, &cancelledAt, &sub.AdminGranted,
		&customerId, &subscriptionId, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	sub.PlanId = domain.PlanId(plan)
	sub.Status = domain.SubscriptionStatus(status)
	sub.BillingCycle = domain.BillingCycle(cycle)
	sub.StartedAt = startedAt.Time
	sub.ExpiresAt = expiresAt.ptr()
	sub.CancelledAt = cancelledAt.ptr()
	sub.PaymentCustomerId = nullString(customerId)
	sub.PaymentSubscriptionId = nullString(subscriptionId)
	sub.UpdatedAt = updatedAt.Time

	if err = fromJSON(features, &sub.Features); err != nil {
		return nil, err
	}
	return sub, nil
}

func (d *Driver) GetSubscription(ctx context.Context, userId string) (*domain.Subscription, error) {
	s, err := scanSubscription(d.queryRow(ctx, subscriptionsTable.selectAll()+" WHERE user_id = ?", userId))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return s, nil
}

func (d *Driver) UpsertSubscription(ctx context.Context, s *domain.Subscription) error {
	features, err := jsonArg(s.Features)
	if err != nil {
		return err
	}

	_, err = d.exec(ctx, d.dialect.upsert(subscriptionsTable),
		s.UserId, string(s.PlanId), string(s.Status), string(s.BillingCycle), s.CallMinutes,
		s.CallMinutesUsed, s.MaxParticipants, features, s.StartedAt.UTC(), timeArg(s.ExpiresAt),
		timeArg(s.CancelledAt), s.AdminGranted, stringArg(s.PaymentCustomerId),
		stringArg(s.PaymentSubscriptionId), s.UpdatedAt.UTC(), s.UpdatedAt.UTC())
	return err
}

func (d *Driver) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	return d.findSubscriptions(ctx, subscriptionsTable.selectAll())
}

func (d *Driver) CountSubscriptionsByPlan(ctx context.Context) (map[domain.PlanId]int64, error) {
	rows, err := d.query(ctx, "SELECT plan_id, COUNT(*) FROM "+subscriptionsTable.name()+
		" WHERE status = ? GROUP BY plan_id", string(domain.SubscriptionActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.PlanId]int64)
	for rows.Next() {
		var plan string
		var total int64
		if err = rows.Scan(&plan, &total); err != nil {
			return nil, err
		}
		counts[domain.PlanId(plan)] = total
	}
	return counts, rows.Err()
}

func (d *Driver) ListSubscriptionsExpiringBefore(ctx context.Context, t time.Time) ([]*domain.Subscription, error) {
	return d.findSubscriptions(ctx, subscriptionsTable.selectAll()+
		" WHERE status = ? AND expires_at IS NOT NULL AND expires_at < ?", string(domain.SubscriptionActive), t.UTC())
}

// IncrementCallMinutes applies the usage only when the row still has room
// for it; the check and the write are one statement.
func (d *Driver) IncrementCallMinutes(ctx context.Context, userId string, minutes int64) (bool, error) {
	res, err := d.exec(ctx, "UPDATE "+subscriptionsTable.name()+
		" SET call_minutes_used = call_minutes_used + ?, updated_at = ?"+
		" WHERE user_id = ? AND (call_minutes = ? OR call_minutes - call_minutes_used >= ?)",
		minutes, domain.Now(), userId, domain.Unlimited, minutes)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *Driver) findSubscriptions(ctx context.Context, query string, args ...any) ([]*domain.Subscription, error) {
	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]*domain.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	backend.SortSubscriptions(subs)
	return subs, nil
}
