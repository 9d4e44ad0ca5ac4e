package mailer

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindReminder Kind = "meeting_reminder"
	KindInvite   Kind = "meeting_invite"
)

// Mailer delivers meeting notifications. Delivery itself happens outside
// this process; callers treat failures as non fatal.
type Mailer interface {
	SendMeetingReminder(ctx context.Context, m *domain.ScheduledMeeting, email string) error
	SendMeetingInvite(ctx context.Context, m *domain.ScheduledMeeting, emails []string) error
}

// Job is the payload handed to the mail worker.
type Job struct {
	Kind       Kind      `json:"kind"`
	To         []string  `json:"to"`
	MeetingId  string    `json:"meetingId"`
	RoomId     string    `json:"roomId"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"startsAt"`
	Timezone   string    `json:"timezone,omitempty"`
	Duration   int64     `json:"duration"`
	Password   string    `json:"password,omitempty"`
	QueuedAt   time.Time `json:"queuedAt"`
	MinutesOut *int64    `json:"minutesOut,omitempty"`
}

func newJob(kind Kind, m *domain.ScheduledMeeting, to []string) *Job {
	return &Job{
		Kind:       kind,
		To:         to,
		MeetingId:  m.Id,
		RoomId:     m.RoomId,
		Title:      m.Title,
		StartsAt:   m.ScheduledDateTime,
		Timezone:   m.Timezone,
		Duration:   m.Duration,
		Password:   m.RoomPassword,
		QueuedAt:   domain.Now(),
		MinutesOut: m.ReminderTime,
	}
}

// New picks the NATS publisher when a connection is available and falls
// back to logging otherwise.
func New(app *config.AppConfig, logger *logrus.Logger) Mailer {
	if app.NatsConn != nil {
		return NewNatsMailer(app.NatsConn, app.NatsInfo.Subjects.Mail, logger)
	}
	logger.WithField("service", "mailer").Warnln("no NATS connection, mail jobs will only be logged")
	return NewLogMailer(logger)
}
