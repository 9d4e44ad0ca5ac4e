package models

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/collab"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/memdriver"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/storagetest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu        sync.Mutex
	reminders []string
	invites   [][]string
}

func (f *fakeMailer) SendMeetingReminder(_ context.Context, _ *domain.ScheduledMeeting, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, email)
	return nil
}

func (f *fakeMailer) SendMeetingInvite(_ context.Context, _ *domain.ScheduledMeeting, emails []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites = append(f.invites, emails)
	return nil
}

func (f *fakeMailer) sentReminders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reminders...)
}

func (f *fakeMailer) sentInvites() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.invites...)
}

type fakePayment struct {
	collab.NoopPayment
	cancelled []string
}

func (f *fakePayment) CancelSubscription(_ context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

type testEnv struct {
	ctx      context.Context
	app      *config.AppConfig
	ds       *storage.Facade
	mailer   *fakeMailer
	payment  *fakePayment
	sub      *SubscriptionModel
	history  *HistoryModel
	room     *RoomModel
	reminder *ReminderModel
	schedule *ScheduleModel
	janitor  *JanitorModel
	auth     *AuthModel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDriver(t, memdriver.New(quietLogger()))
}

// newFaultyTestEnv runs the models on an in-memory driver whose operations
// can be made to fail.
func newFaultyTestEnv(t *testing.T) (*testEnv, *storagetest.FaultyDriver) {
	t.Helper()
	d := storagetest.NewFaultyDriver(memdriver.New(quietLogger()))
	return newTestEnvWithDriver(t, d), d
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnvWithDriver(t *testing.T, d backend.Driver) *testEnv {
	t.Helper()
	logger := quietLogger()

	validity := time.Hour
	app, err := config.New(&config.AppConfig{
		Client: config.ClientInfo{
			ApiKey:        "plugin",
			Secret:        "a-long-enough-secret-for-hs256-signing",
			AdminEmails:   []string{"admin@example.com"},
			TokenValidity: &validity,
		},
		RoomSettings: config.RoomSettings{
			CleanupInterval: 20 * time.Millisecond,
		},
	})
	require.NoError(t, err)

	ctx := context.Background()
	e := &testEnv{
		ctx:     ctx,
		app:     app,
		ds:      storage.NewWithDriver(d, logger),
		mailer:  new(fakeMailer),
		payment: new(fakePayment),
	}
	e.sub = NewSubscriptionModel(app, e.ds, e.payment, logger)
	e.history = NewHistoryModel(e.ds, logger)
	e.room = NewRoomModel(app, e.ds, e.sub, e.history, collab.NewNoopStreaming(logger), logger)
	e.reminder = NewReminderModel(ctx, app, e.ds, e.mailer, logger)
	e.schedule = NewScheduleModel(app, e.ds, e.sub, e.reminder, collab.NewNoopCalendar(logger), logger)
	e.janitor = NewJanitorModel(ctx, app, e.ds, e.sub, logger)
	e.auth = NewAuthModel(app, logger)
	t.Cleanup(e.reminder.Shutdown)
	return e
}

// givePlan stores a fresh subscription on plan for userId.
func (e *testEnv) givePlan(t *testing.T, userId string, plan domain.PlanId) *domain.Subscription {
	t.Helper()
	p, ok := domain.GetPlan(plan)
	require.True(t, ok)
	s := domain.NewSubscription(userId, p, domain.Now())
	require.NoError(t, e.ds.SaveSubscription(e.ctx, s))
	return s
}
