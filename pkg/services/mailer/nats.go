package mailer

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

// publisher is the part of *nats.Conn we need.
type publisher interface {
	Publish(subj string, data []byte) error
}

// NatsMailer publishes one JSON Job per call on a fixed subject.
type NatsMailer struct {
	conn    publisher
	subject string
	logger  *logrus.Entry
}

func NewNatsMailer(conn publisher, subject string, logger *logrus.Logger) *NatsMailer {
	return &NatsMailer{
		conn:    conn,
		subject: subject,
		logger:  logger.WithField("service", "mailer"),
	}
}

func (m *NatsMailer) SendMeetingReminder(ctx context.Context, meeting *domain.ScheduledMeeting, email string) error {
	return m.publish(ctx, newJob(KindReminder, meeting, []string{email}))
}

func (m *NatsMailer) SendMeetingInvite(ctx context.Context, meeting *domain.ScheduledMeeting, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	return m.publish(ctx, newJob(KindInvite, meeting, emails))
}

func (m *NatsMailer) publish(ctx context.Context, job *Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := m.conn.Publish(m.subject, data); err != nil {
		return fmt.Errorf("publish %s job: %w", job.Kind, err)
	}
	m.logger.WithFields(logrus.Fields{
		"kind":      job.Kind,
		"meetingId": job.MeetingId,
		"to":        len(job.To),
	}).Debugln("mail job published")
	return nil
}
