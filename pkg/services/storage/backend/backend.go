// Package backend holds the contract every storage driver satisfies.
package backend

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
)

// Kind tags the physical storage technology behind the facade.
type Kind int

const (
	KindInMemory Kind = iota
	KindManagedRelational
	KindRawRelational
	KindDocumentStore
)

func (k Kind) String() string {
	switch k {
	case KindManagedRelational:
		return "managed-relational"
	case KindRawRelational:
		return "raw-relational"
	case KindDocumentStore:
		return "document-store"
	}
	return "in-memory"
}

// Durable reports whether data survives a process restart.
func (k Kind) Durable() bool {
	return k != KindInMemory
}

// Reads return (nil, nil) when the record does not exist.
type RoomStore interface {
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	UpsertRoom(ctx context.Context, r *domain.Room) error
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]*domain.Room, error)
	// DeleteExpiredRooms removes every room with expires_at before now.
	DeleteExpiredRooms(ctx context.Context, now time.Time) (int64, error)
}

type ScheduledMeetingStore interface {
	GetScheduledMeeting(ctx context.Context, id string) (*domain.ScheduledMeeting, error)
	UpsertScheduledMeeting(ctx context.Context, m *domain.ScheduledMeeting) error
	DeleteScheduledMeeting(ctx context.Context, id string) error
	ListScheduledMeetings(ctx context.Context) ([]*domain.ScheduledMeeting, error)
	ListScheduledMeetingsByHost(ctx context.Context, hostId string) ([]*domain.ScheduledMeeting, error)
	// ListScheduledBetween returns meetings with from <= scheduledDateTime < to.
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduledMeeting, error)
}

type HistoryStore interface {
	InsertMeetingHistory(ctx context.Context, e *domain.MeetingHistoryEntry) error
	ListMeetingHistory(ctx context.Context, hostId string) ([]*domain.MeetingHistoryEntry, error)
}

type SubscriptionStore interface {
	GetSubscription(ctx context.Context, userId string) (*domain.Subscription, error)
	UpsertSubscription(ctx context.Context, s *domain.Subscription) error
	ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error)
	// CountSubscriptionsByPlan counts active subscriptions.
	CountSubscriptionsByPlan(ctx context.Context) (map[domain.PlanId]int64, error)
	ListSubscriptionsExpiringBefore(ctx context.Context, t time.Time) ([]*domain.Subscription, error)
	// IncrementCallMinutes adds minutes to the usage only if the quota allows
	// it, in one atomic step. applied is false when the row is missing or the
	// quota would be exceeded.
	IncrementCallMinutes(ctx context.Context, userId string, minutes int64) (applied bool, err error)
}

type Driver interface {
	RoomStore
	ScheduledMeetingStore
	HistoryStore
	SubscriptionStore

	Kind() Kind
	Ping(ctx context.Context) error
	Close() error
}
