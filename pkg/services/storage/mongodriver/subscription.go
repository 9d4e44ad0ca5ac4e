package mongodriver

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (d *Driver) GetSubscription(ctx context.Context, userId string) (*domain.Subscription, error) {
	doc, err := findOne[subscriptionDoc](ctx, d.subs, userId)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.subscription(), nil
}

func (d *Driver) UpsertSubscription(ctx context.Context, s *domain.Subscription) error {
	return replaceByID(ctx, d.subs, s.UserId, toSubscriptionDoc(s))
}

func (d *Driver) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	return d.findSubscriptions(ctx, bson.M{})
}

func (d *Driver) CountSubscriptionsByPlan(ctx context.Context) (map[domain.PlanId]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(domain.SubscriptionActive)}}},
		{{Key: "$group", Value: bson.M{"_id": "$plan_id", "total": bson.M{"$sum": 1}}}},
	}
	cur, err := d.subs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		PlanId string `bson:"_id"`
		Total  int64  `bson:"total"`
	}
	if err = cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[domain.PlanId]int64, len(rows))
	for _, r := range rows {
		counts[domain.PlanId(r.PlanId)] = r.Total
	}
	return counts, nil
}

func (d *Driver) ListSubscriptionsExpiringBefore(ctx context.Context, t time.Time) ([]*domain.Subscription, error) {
	return d.findSubscriptions(ctx, bson.M{
		"status":     string(domain.SubscriptionActive),
		"expires_at": bson.M{"$lt": t},
	})
}

// IncrementCallMinutes puts the quota check in the update filter, so the
// server applies check and $inc to the document atomically.
func (d *Driver) IncrementCallMinutes(ctx context.Context, userId string, minutes int64) (bool, error) {
	filter := bson.M{
		"_id": userId,
		"$or": bson.A{
			bson.M{"call_minutes": domain.Unlimited},
			bson.M{"$expr": bson.M{"$gte": bson.A{
				bson.M{"$subtract": bson.A{"$call_minutes", "$call_minutes_used"}},
				minutes,
			}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"call_minutes_used": minutes},
		"$set": bson.M{"updated_at": domain.Now()},
	}

	res, err := d.subs.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (d *Driver) findSubscriptions(ctx context.Context, filter bson.M) ([]*domain.Subscription, error) {
	docs, err := findAll[subscriptionDoc](ctx, d.subs, filter)
	if err != nil {
		return nil, err
	}

	subs := make([]*domain.Subscription, 0, len(docs))
	for i := range docs {
		subs = append(subs, docs[i].subscription())
	}
	backend.SortSubscriptions(subs)
	return subs, nil
}
