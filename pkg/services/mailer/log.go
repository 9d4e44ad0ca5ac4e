package mailer

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

// LogMailer writes every job to the log instead of sending it.
type LogMailer struct {
	logger *logrus.Entry
}

func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger.WithField("service", "mailer")}
}

func (m *LogMailer) SendMeetingReminder(_ context.Context, meeting *domain.ScheduledMeeting, email string) error {
	m.log(newJob(KindReminder, meeting, []string{email}))
	return nil
}

func (m *LogMailer) SendMeetingInvite(_ context.Context, meeting *domain.ScheduledMeeting, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	m.log(newJob(KindInvite, meeting, emails))
	return nil
}

func (m *LogMailer) log(job *Job) {
	m.logger.WithFields(logrus.Fields{
		"kind":      job.Kind,
		"meetingId": job.MeetingId,
		"to":        job.To,
		"startsAt":  job.StartsAt,
	}).Infoln("mail job")
}
