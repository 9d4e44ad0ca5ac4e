package gormdriver

import (
	"context"
	"errors"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/dbmodels"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Driver) GetSubscription(ctx context.Context, userId string) (*domain.Subscription, error) {
	row := new(dbmodels.Subscription)
	result := d.db.WithContext(ctx).Where("user_id = ?", userId).Take(row)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return rowToSubscription(row)
}

func (d *Driver) UpsertSubscription(ctx context.Context, s *domain.Subscription) error {
	row, err := subscriptionToRow(s)
	if err != nil {
		return err
	}

	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(dbmodels.SubscriptionMutableColumns),
	}).Create(row).Error
}

func (d *Driver) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	return d.findSubscriptions(d.db.WithContext(ctx))
}

func (d *Driver) CountSubscriptionsByPlan(ctx context.Context) (map[domain.PlanId]int64, error) {
	var rows []struct {
		PlanID string
		Total  int64
	}
	err := d.db.WithContext(ctx).Model(&dbmodels.Subscription{}).
		Select("plan_id, COUNT(*) AS total").
		Where("status = ?", string(domain.SubscriptionActive)).
		Group("plan_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.PlanId]int64, len(rows))
	for _, r := range rows {
		counts[domain.PlanId(r.PlanID)] = r.Total
	}
	return counts, nil
}

func (d *Driver) ListSubscriptionsExpiringBefore(ctx context.Context, t time.Time) ([]*domain.Subscription, error) {
	return d.findSubscriptions(d.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", string(domain.SubscriptionActive), t.UTC()))
}

// IncrementCallMinutes is a single conditional UPDATE, so concurrent calls
// can never push usage past the quota.
func (d *Driver) IncrementCallMinutes(ctx context.Context, userId string, minutes int64) (bool, error) {
	result := d.db.WithContext(ctx).Model(&dbmodels.Subscription{}).
		Where("user_id = ?", userId).
		Where("(call_minutes = ? OR call_minutes - call_minutes_used >= ?)", domain.Unlimited, minutes).
		Updates(map[string]any{
			"call_minutes_used": gorm.Expr("call_minutes_used + ?", minutes),
			"updated_at":        domain.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (d *Driver) findSubscriptions(tx *gorm.DB) ([]*domain.Subscription, error) {
	var rows []dbmodels.Subscription
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}

	subs := make([]*domain.Subscription, 0, len(rows))
	for i := range rows {
		s, err := rowToSubscription(&rows[i])
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	backend.SortSubscriptions(subs)
	return subs, nil
}
