// Package storagetest is a conformance suite every backend.Driver must pass.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDriverSuite exercises d against the shared contract. Ids are random so
// the suite can run against a database that already holds data.
func RunDriverSuite(t *testing.T, d backend.Driver) {
	t.Run("RoomRoundTrip", func(t *testing.T) { testRoomRoundTrip(t, d) })
	t.Run("RoomMinimal", func(t *testing.T) { testRoomMinimal(t, d) })
	t.Run("RoomUpsertAndDelete", func(t *testing.T) { testRoomUpsertAndDelete(t, d) })
	t.Run("DeleteExpiredRooms", func(t *testing.T) { testDeleteExpiredRooms(t, d) })
	t.Run("ScheduledMeetings", func(t *testing.T) { testScheduledMeetings(t, d) })
	t.Run("History", func(t *testing.T) { testHistory(t, d) })
	t.Run("Subscriptions", func(t *testing.T) { testSubscriptions(t, d) })
	t.Run("IncrementCallMinutes", func(t *testing.T) { testIncrementCallMinutes(t, d) })
}

// AssertSameJSON compares two values by their JSON encoding, which ignores
// time zone pointers while keeping every field.
func AssertSameJSON(t *testing.T, expected, actual any) {
	t.Helper()
	e, err := json.Marshal(expected)
	require.NoError(t, err)
	a, err := json.Marshal(actual)
	require.NoError(t, err)
	assert.JSONEq(t, string(e), string(a))
}

func ptr[T any](v T) *T {
	return &v
}

// SampleRoom returns a room with every field populated.
func SampleRoom() *domain.Room {
	now := domain.Now()
	started := now.Add(time.Minute)
	expires := now.Add(time.Hour)
	host := "host-" + uuid.NewString()

	r, _ := domain.NewRoom(domain.NewRoomOptions{
		Name:      "weekly sync",
		CreatedBy: host,
		Password:  "s3cret!",
		Settings:  domain.RoomSettings{WaitingRoomEnabled: true, MaxParticipants: 25},
	})
	r.MainHost = ptr(host)
	r.OriginalHost = ptr(host)
	r.HostId = ptr(host)
	r.Moderators = []string{"mod-1", "mod-2"}
	r.Participants = []domain.RoomParticipant{
		{UserId: host, Name: "Host", Email: "host@example.com", JoinedAt: now},
		{UserId: "p-1", Name: "Peer", JoinedAt: now.Add(time.Second)},
	}
	r.WaitingRoom = []domain.RoomParticipant{{UserId: "w-1", Name: "Waiting", JoinedAt: now}}
	r.MeetingStatus = domain.MeetingStatusStarted
	r.IsRecording = true
	r.IsStreaming = true
	r.StreamingInfo = &domain.StreamInfo{
		StreamId:  "stream-1",
		Url:       "rtmp://live.example.com/app",
		Status:    "live",
		StartedAt: started,
		Options:   map[string]string{"quality": "720p"},
	}
	r.Chat = []domain.ChatMessage{{Id: "c-1", UserId: host, Name: "Host", Message: "hello", SentAt: now}}
	r.Polls = []domain.Poll{{
		Id:        "poll-1",
		Question:  "lunch?",
		Options:   []string{"yes", "no"},
		Votes:     map[string]int64{"yes": 2},
		CreatedBy: host,
		CreatedAt: now,
	}}
	r.Files = []domain.SharedFile{{Id: "f-1", Name: "deck.pdf", Url: "https://files.example.com/deck.pdf", Size: 1024, UploadedBy: host, UploadedAt: now}}
	r.Reactions = []domain.Reaction{{UserId: "p-1", Emoji: "👍", At: now}}
	r.StartedAt = &started
	r.ExpiresAt = &expires
	return r
}

func testRoomRoundTrip(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	r := SampleRoom()
	t.Cleanup(func() { _ = d.DeleteRoom(ctx, r.Id) })

	require.NoError(t, d.UpsertRoom(ctx, r))
	got, err := d.GetRoom(ctx, r.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	AssertSameJSON(t, r, got)
}

func testRoomMinimal(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	r, err := domain.NewRoom(domain.NewRoomOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.DeleteRoom(ctx, r.Id) })

	require.NoError(t, d.UpsertRoom(ctx, r))
	got, err := d.GetRoom(ctx, r.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	AssertSameJSON(t, r, got)
	assert.Nil(t, got.MainHost)
	assert.NotNil(t, got.Moderators)
}

func testRoomUpsertAndDelete(t *testing.T, d backend.Driver) {
	ctx := context.Background()

	missing, err := d.GetRoom(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	r := SampleRoom()
	require.NoError(t, d.UpsertRoom(ctx, r))
	createdAt := r.CreatedAt

	r.Name = "renamed"
	r.MeetingStatus = domain.MeetingStatusEnded
	r.Moderators = append(r.Moderators, "mod-3")
	// relational upserts never touch created_at; document stores replace the whole record
	r.CreatedAt = createdAt.Add(time.Hour)
	require.NoError(t, d.UpsertRoom(ctx, r))

	got, err := d.GetRoom(ctx, r.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, domain.MeetingStatusEnded, got.MeetingStatus)
	assert.Len(t, got.Moderators, 3)
	if d.Kind() == backend.KindManagedRelational || d.Kind() == backend.KindRawRelational {
		assert.True(t, createdAt.Equal(got.CreatedAt), "created_at changed to %s", got.CreatedAt)
	}

	rooms, err := d.ListRooms(ctx)
	require.NoError(t, err)
	assert.True(t, containsRoom(rooms, r.Id))

	require.NoError(t, d.DeleteRoom(ctx, r.Id))
	got, err = d.GetRoom(ctx, r.Id)
	require.NoError(t, err)
	assert.Nil(t, got)
	// deleting again is not an error
	require.NoError(t, d.DeleteRoom(ctx, r.Id))
}

func containsRoom(rooms []*domain.Room, id string) bool {
	for _, r := range rooms {
		if r.Id == id {
			return true
		}
	}
	return false
}

func testDeleteExpiredRooms(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	now := domain.Now()

	expired := SampleRoom()
	expired.ExpiresAt = ptr(now.Add(-time.Minute))
	fresh := SampleRoom()
	fresh.ExpiresAt = ptr(now.Add(time.Hour))
	forever := SampleRoom()
	forever.ExpiresAt = nil
	t.Cleanup(func() {
		_ = d.DeleteRoom(ctx, fresh.Id)
		_ = d.DeleteRoom(ctx, forever.Id)
	})

	for _, r := range []*domain.Room{expired, fresh, forever} {
		require.NoError(t, d.UpsertRoom(ctx, r))
	}

	n, err := d.DeleteExpiredRooms(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	n, err = d.DeleteExpiredRooms(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err := d.GetRoom(ctx, expired.Id)
	require.NoError(t, err)
	assert.Nil(t, got)
	for _, id := range []string{fresh.Id, forever.Id} {
		got, err = d.GetRoom(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, got)
	}
}

// SampleScheduledMeeting returns a recurring meeting owned by hostId.
func SampleScheduledMeeting(hostId string, at time.Time) *domain.ScheduledMeeting {
	now := domain.Now()
	return &domain.ScheduledMeeting{
		Id:                uuid.NewString(),
		RoomId:            uuid.NewString(),
		HostId:            hostId,
		Title:             "planning",
		Description:       "quarterly planning",
		ScheduledDate:     at.Format(domain.DateLayout),
		ScheduledTime:     at.Format(domain.TimeLayout),
		Timezone:          "UTC",
		ScheduledDateTime: at,
		Duration:          45,
		RoomPassword:      "abcd1234",
		ReminderTime:      ptr(int64(15)),
		Participants:      []domain.MeetingParticipant{{Email: "a@example.com"}, {Email: "b@example.com", Name: "B"}},
		IsRecurring:       true,
		RecurrencePattern: domain.RecurrenceWeekly,
		RecurrenceEndDate: ptr("2031-01-01"),
		RecurrenceCount:   ptr(int64(4)),
		Status:            domain.ScheduledStatusScheduled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func testScheduledMeetings(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	host := "host-" + uuid.NewString()
	base := time.Date(2031, 3, 1, 10, 0, 0, 0, time.UTC)

	m1 := SampleScheduledMeeting(host, base.Add(2*time.Hour))
	m2 := SampleScheduledMeeting(host, base)
	other := SampleScheduledMeeting("someone-else-"+uuid.NewString(), base.Add(48*time.Hour))
	other.ReminderTime = nil
	other.RecurrenceEndDate = nil
	other.RecurrenceCount = nil
	other.IsRecurring = false
	other.RecurrencePattern = domain.RecurrenceNone
	t.Cleanup(func() {
		for _, m := range []*domain.ScheduledMeeting{m1, m2, other} {
			_ = d.DeleteScheduledMeeting(ctx, m.Id)
		}
	})

	for _, m := range []*domain.ScheduledMeeting{m1, m2, other} {
		require.NoError(t, d.UpsertScheduledMeeting(ctx, m))
	}

	got, err := d.GetScheduledMeeting(ctx, m1.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	AssertSameJSON(t, m1, got)

	got, err = d.GetScheduledMeeting(ctx, other.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	AssertSameJSON(t, other, got)

	byHost, err := d.ListScheduledMeetingsByHost(ctx, host)
	require.NoError(t, err)
	require.Len(t, byHost, 2)
	assert.Equal(t, m2.Id, byHost[0].Id)
	assert.Equal(t, m1.Id, byHost[1].Id)

	between, err := d.ListScheduledBetween(ctx, base, base.Add(3*time.Hour))
	require.NoError(t, err)
	ids := make([]string, 0, len(between))
	for _, m := range between {
		ids = append(ids, m.Id)
	}
	assert.Contains(t, ids, m1.Id)
	assert.Contains(t, ids, m2.Id)
	assert.NotContains(t, ids, other.Id)

	m1.Title = "replanned"
	m1.Participants = []domain.MeetingParticipant{}
	require.NoError(t, d.UpsertScheduledMeeting(ctx, m1))
	got, err = d.GetScheduledMeeting(ctx, m1.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "replanned", got.Title)
	assert.Empty(t, got.Participants)

	all, err := d.ListScheduledMeetings(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 3)

	require.NoError(t, d.DeleteScheduledMeeting(ctx, m1.Id))
	got, err = d.GetScheduledMeeting(ctx, m1.Id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testHistory(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	host := "host-" + uuid.NewString()
	now := domain.Now()

	older := &domain.MeetingHistoryEntry{Id: uuid.NewString(), RoomId: uuid.NewString(), HostId: host, Title: "first", Duration: 30, ParticipantsCount: 3, Status: "ended", CreatedAt: now.Add(-time.Hour)}
	newer := &domain.MeetingHistoryEntry{Id: uuid.NewString(), RoomId: uuid.NewString(), HostId: host, Title: "second", Duration: 5, ParticipantsCount: 2, Status: "ended", CreatedAt: now}
	require.NoError(t, d.InsertMeetingHistory(ctx, older))
	require.NoError(t, d.InsertMeetingHistory(ctx, newer))

	entries, err := d.ListMeetingHistory(ctx, host)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	AssertSameJSON(t, newer, entries[0])
	AssertSameJSON(t, older, entries[1])
}

// SampleSubscription returns a basic plan subscription for a fresh user.
func SampleSubscription() *domain.Subscription {
	plan, _ := domain.GetPlan(domain.PlanBasic)
	s := domain.NewSubscription("user-"+uuid.NewString(), plan, domain.Now())
	s.PaymentCustomerId = ptr("cus_123")
	s.PaymentSubscriptionId = ptr("sub_456")
	return s
}

func testSubscriptions(t *testing.T, d backend.Driver) {
	ctx := context.Background()

	missing, err := d.GetSubscription(ctx, "user-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	before, err := d.CountSubscriptionsByPlan(ctx)
	require.NoError(t, err)

	s := SampleSubscription()
	require.NoError(t, d.UpsertSubscription(ctx, s))
	got, err := d.GetSubscription(ctx, s.UserId)
	require.NoError(t, err)
	require.NotNil(t, got)
	AssertSameJSON(t, s, got)

	grant := domain.PremiumGrant("user-"+uuid.NewString(), domain.Now())
	require.NoError(t, d.UpsertSubscription(ctx, grant))
	got, err = d.GetSubscription(ctx, grant.UserId)
	require.NoError(t, err)
	require.NotNil(t, got)
	AssertSameJSON(t, grant, got)

	after, err := d.CountSubscriptionsByPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, before[domain.PlanBasic]+1, after[domain.PlanBasic])
	assert.Equal(t, before[domain.PlanPro]+1, after[domain.PlanPro])

	expiring, err := d.ListSubscriptionsExpiringBefore(ctx, s.ExpiresAt.Add(time.Minute))
	require.NoError(t, err)
	var found bool
	for _, e := range expiring {
		found = found || e.UserId == s.UserId
		assert.NotEqual(t, grant.UserId, e.UserId)
	}
	assert.True(t, found)

	s.Status = domain.SubscriptionCancelled
	s.CancelledAt = ptr(domain.Now())
	require.NoError(t, d.UpsertSubscription(ctx, s))
	got, err = d.GetSubscription(ctx, s.UserId)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.SubscriptionCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)

	subs, err := d.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(subs), 2)
}

func testIncrementCallMinutes(t *testing.T, d backend.Driver) {
	ctx := context.Background()

	applied, err := d.IncrementCallMinutes(ctx, "user-"+uuid.NewString(), 1)
	require.NoError(t, err)
	assert.False(t, applied)

	free := domain.DefaultSubscription("user-" + uuid.NewString())
	free.CallMinutesUsed = 100
	require.NoError(t, d.UpsertSubscription(ctx, free))

	applied, err = d.IncrementCallMinutes(ctx, free.UserId, 25)
	require.NoError(t, err)
	assert.False(t, applied)
	got, err := d.GetSubscription(ctx, free.UserId)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.CallMinutesUsed)

	applied, err = d.IncrementCallMinutes(ctx, free.UserId, 20)
	require.NoError(t, err)
	assert.True(t, applied)
	got, err = d.GetSubscription(ctx, free.UserId)
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.CallMinutesUsed)

	unlimited := domain.PremiumGrant("user-"+uuid.NewString(), domain.Now())
	require.NoError(t, d.UpsertSubscription(ctx, unlimited))
	applied, err = d.IncrementCallMinutes(ctx, unlimited.UserId, 10_000)
	require.NoError(t, err)
	assert.True(t, applied)
}
