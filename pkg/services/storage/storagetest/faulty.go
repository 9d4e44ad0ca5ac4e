package storagetest

import (
	"context"
	"errors"
	"sync"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
)

// ErrConnectionReset is returned by FaultyDriver for every injected failure.
var ErrConnectionReset = errors.New("connection reset")

// Operation names accepted by FaultyDriver.Fail.
const (
	OpGetRoom              = "GetRoom"
	OpUpsertRoom           = "UpsertRoom"
	OpDeleteRoom           = "DeleteRoom"
	OpListRooms            = "ListRooms"
	OpGetScheduledMeeting  = "GetScheduledMeeting"
	OpUpsertScheduled      = "UpsertScheduledMeeting"
	OpGetSubscription      = "GetSubscription"
	OpUpsertSubscription   = "UpsertSubscription"
	OpIncrementCallMinutes = "IncrementCallMinutes"
	OpPing                 = "Ping"
)

// FaultyDriver wraps a working driver and fails selected operations.
type FaultyDriver struct {
	backend.Driver

	mu    sync.Mutex
	fails map[string]int
}

func NewFaultyDriver(d backend.Driver) *FaultyDriver {
	return &FaultyDriver{Driver: d, fails: make(map[string]int)}
}

// Fail makes the next n calls of op return ErrConnectionReset. A negative n
// fails every call until Heal.
func (f *FaultyDriver) Fail(op string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fails[op] = n
}

func (f *FaultyDriver) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.fails)
}

func (f *FaultyDriver) fault(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.fails[op]
	if !ok || n == 0 {
		return nil
	}
	if n > 0 {
		f.fails[op] = n - 1
	}
	return ErrConnectionReset
}

func (f *FaultyDriver) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	if err := f.fault(OpGetRoom); err != nil {
		return nil, err
	}
	return f.Driver.GetRoom(ctx, id)
}

func (f *FaultyDriver) UpsertRoom(ctx context.Context, r *domain.Room) error {
	if err := f.fault(OpUpsertRoom); err != nil {
		return err
	}
	return f.Driver.UpsertRoom(ctx, r)
}

func (f *FaultyDriver) DeleteRoom(ctx context.Context, id string) error {
	if err := f.fault(OpDeleteRoom); err != nil {
		return err
	}
	return f.Driver.DeleteRoom(ctx, id)
}

func (f *FaultyDriver) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	if err := f.fault(OpListRooms); err != nil {
		return nil, err
	}
	return f.Driver.ListRooms(ctx)
}

func (f *FaultyDriver) GetScheduledMeeting(ctx context.Context, id string) (*domain.ScheduledMeeting, error) {
	if err := f.fault(OpGetScheduledMeeting); err != nil {
		return nil, err
	}
	return f.Driver.GetScheduledMeeting(ctx, id)
}

func (f *FaultyDriver) UpsertScheduledMeeting(ctx context.Context, m *domain.ScheduledMeeting) error {
	if err := f.fault(OpUpsertScheduled); err != nil {
		return err
	}
	return f.Driver.UpsertScheduledMeeting(ctx, m)
}

func (f *FaultyDriver) GetSubscription(ctx context.Context, userId string) (*domain.Subscription, error) {
	if err := f.fault(OpGetSubscription); err != nil {
		return nil, err
	}
	return f.Driver.GetSubscription(ctx, userId)
}

func (f *FaultyDriver) UpsertSubscription(ctx context.Context, s *domain.Subscription) error {
	if err := f.fault(OpUpsertSubscription); err != nil {
		return err
	}
	return f.Driver.UpsertSubscription(ctx, s)
}

func (f *FaultyDriver) IncrementCallMinutes(ctx context.Context, userId string, minutes int64) (bool, error) {
	if err := f.fault(OpIncrementCallMinutes); err != nil {
		return false, err
	}
	return f.Driver.IncrementCallMinutes(ctx, userId, minutes)
}

func (f *FaultyDriver) Ping(ctx context.Context) error {
	if err := f.fault(OpPing); err != nil {
		return err
	}
	return f.Driver.Ping(ctx)
}
