package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/memdriver"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/storagetest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func appConfig(t *testing.T, mutate func(c *config.AppConfig)) *config.AppConfig {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	timeout := time.Second
	c := &config.AppConfig{}
	c.StorageInfo.ProbeTimeout = &timeout
	if mutate != nil {
		mutate(c)
	}
	c, err := config.New(c)
	require.NoError(t, err)
	return c
}

func TestNew_Selection(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *config.AppConfig)
	}{
		{"nothing configured", nil},
		{"managed database unreachable", func(c *config.AppConfig) {
			c.DatabaseInfo.Host = "127.0.0.1"
			c.DatabaseInfo.Port = 1
			c.DatabaseInfo.DBName = "meethub"
		}},
		{"postgres unreachable", func(c *config.AppConfig) {
			c.StorageInfo.ConnectionUrl = "postgres://u:p@127.0.0.1:1/meethub?sslmode=disable"
		}},
		{"mysql unreachable", func(c *config.AppConfig) {
			c.StorageInfo.ConnectionUrl = "mysql://u:p@127.0.0.1:1/meethub"
		}},
		{"redis unreachable", func(c *config.AppConfig) {
			c.StorageInfo.ConnectionUrl = "redis://127.0.0.1:1/0"
		}},
		{"mongo unreachable", func(c *config.AppConfig) {
			c.StorageInfo.ConnectionUrl = "mongodb://127.0.0.1:1"
		}},
		{"unknown scheme", func(c *config.AppConfig) {
			c.StorageInfo.ConnectionUrl = "ftp://example.com"
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			start := time.Now()
			f := New(context.Background(), appConfig(t, c.mutate), quietLogger())
			t.Cleanup(func() { _ = f.Close() })

			assert.Equal(t, backend.KindInMemory, f.Kind())
			assert.False(t, f.Kind().Durable())
			assert.Less(t, time.Since(start), 5*time.Second)
			assert.NoError(t, f.Ping(context.Background()))

			r := storagetest.SampleRoom()
			require.NoError(t, f.SaveRoom(context.Background(), r))
			storagetest.AssertSameJSON(t, r, f.GetRoom(context.Background(), r.Id))
		})
	}
}

func TestNew_ConnectionUrlFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "redis://127.0.0.1:1/0")
	timeout := time.Second
	c, err := config.New(&config.AppConfig{StorageInfo: config.StorageInfo{ProbeTimeout: &timeout}})
	require.NoError(t, err)
	assert.Equal(t, "redis://127.0.0.1:1/0", c.StorageInfo.ConnectionUrl)
}

func TestFacade_EntityOperations(t *testing.T) {
	ctx := context.Background()
	f := NewWithDriver(memdriver.New(quietLogger()), quietLogger())

	assert.Nil(t, f.GetRoom(ctx, "missing"))
	assert.NotNil(t, f.GetAllRooms(ctx))

	r := storagetest.SampleRoom()
	require.NoError(t, f.SaveRoom(ctx, r))
	storagetest.AssertSameJSON(t, r, f.GetRoom(ctx, r.Id))

	m := storagetest.SampleScheduledMeeting(*r.MainHost, domain.Now().Add(time.Hour))
	m.RoomId = r.Id
	require.NoError(t, f.SaveScheduledMeeting(ctx, m))
	assert.Len(t, f.GetScheduledMeetingsByHost(ctx, *r.MainHost), 1)
	assert.Len(t, f.GetScheduledMeetingsBetween(ctx, domain.Now(), domain.Now().Add(2*time.Hour)), 1)
	assert.Len(t, f.GetAllScheduledMeetings(ctx), 1)

	require.NoError(t, f.AddMeetingHistory(ctx, domain.NewMeetingHistoryEntry(r, "", 2)))
	assert.Len(t, f.GetMeetingHistory(ctx, ""), 1)

	require.NoError(t, f.SaveSubscription(ctx, domain.DefaultSubscription("u1")))
	applied, err := f.IncrementCallMinutes(ctx, "u1", 30)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(30), f.GetSubscription(ctx, "u1").CallMinutesUsed)
	assert.Equal(t, int64(1), f.CountSubscriptionsByPlan(ctx)[domain.PlanFree])

	st, err := f.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "in-memory", st.Backend)
	assert.Equal(t, 1, st.Rooms)
	assert.Equal(t, 1, st.ScheduledMeetings)
	assert.Equal(t, 1, st.HistoryEntries)
	assert.Equal(t, 1, st.Subscriptions)

	require.NoError(t, f.DeleteScheduledMeeting(ctx, m.Id))
	require.NoError(t, f.DeleteRoom(ctx, r.Id))
	assert.Nil(t, f.GetRoom(ctx, r.Id))
}

func TestFacade_ReadNormalisesAbsentCollections(t *testing.T) {
	ctx := context.Background()
	d := memdriver.New(quietLogger())
	f := NewWithDriver(d, quietLogger())

	r := &domain.Room{Id: "bare", Password: "pw", CreatedAt: domain.Now()}
	require.NoError(t, d.UpsertRoom(ctx, r))

	got := f.GetRoom(ctx, "bare")
	require.NotNil(t, got)
	assert.NotNil(t, got.Moderators)
	assert.NotNil(t, got.Participants)
	assert.NotNil(t, got.Chat)
	assert.Equal(t, domain.MeetingStatusWaiting, got.MeetingStatus)
}

func TestFacade_CleanupExpiredRooms(t *testing.T) {
	ctx := context.Background()
	f := NewWithDriver(memdriver.New(quietLogger()), quietLogger())

	expired := storagetest.SampleRoom()
	past := domain.Now().Add(-time.Minute)
	expired.ExpiresAt = &past
	live := storagetest.SampleRoom()
	require.NoError(t, f.SaveRoom(ctx, expired))
	require.NoError(t, f.SaveRoom(ctx, live))

	n, err := f.CleanupExpiredRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Nil(t, f.GetRoom(ctx, expired.Id))
	assert.NotNil(t, f.GetRoom(ctx, live.Id))
}

func TestFacade_Faults(t *testing.T) {
	ctx := context.Background()
	d := storagetest.NewFaultyDriver(memdriver.New(quietLogger()))
	for _, op := range []string{
		storagetest.OpGetRoom,
		storagetest.OpUpsertRoom,
		storagetest.OpListRooms,
		storagetest.OpGetSubscription,
		storagetest.OpIncrementCallMinutes,
	} {
		d.Fail(op, -1)
	}
	f := NewWithDriver(d, quietLogger())

	assert.Nil(t, f.GetRoom(ctx, "x"))
	assert.Empty(t, f.GetAllRooms(ctx))
	assert.Nil(t, f.GetSubscription(ctx, "u1"))

	_, err := f.LookupRoom(ctx, "x")
	assert.True(t, domain.IsBackend(err))
	_, err = f.LookupSubscription(ctx, "u1")
	assert.True(t, domain.IsBackend(err))
	assert.ErrorIs(t, err, storagetest.ErrConnectionReset)

	err = f.SaveRoom(ctx, storagetest.SampleRoom())
	require.Error(t, err)
	assert.True(t, domain.IsBackend(err))
	assert.ErrorIs(t, err, storagetest.ErrConnectionReset)

	applied, err := f.IncrementCallMinutes(ctx, "u1", 5)
	assert.False(t, applied)
	assert.True(t, domain.IsBackend(err))

	_, err = f.Stats(ctx)
	assert.True(t, domain.IsBackend(err))
}

func TestFacade_LookupDistinguishesAbsentFromFault(t *testing.T) {
	ctx := context.Background()
	d := storagetest.NewFaultyDriver(memdriver.New(quietLogger()))
	f := NewWithDriver(d, quietLogger())

	s, err := f.LookupSubscription(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, f.SaveSubscription(ctx, domain.DefaultSubscription("u1")))
	d.Fail(storagetest.OpGetSubscription, 1)
	_, err = f.LookupSubscription(ctx, "u1")
	assert.True(t, domain.IsBackend(err))

	// the fault was transient
	s, err = f.LookupSubscription(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "u1", s.UserId)
}
