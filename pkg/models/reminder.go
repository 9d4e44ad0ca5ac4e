package models

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/mailer"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/sirupsen/logrus"
)

type reminder struct {
	meetingId  string
	occurrence time.Time
	fireAt     time.Time
	index      int
}

// reminderQueue is a min-heap on fireAt.
type reminderQueue []*reminder

func (q reminderQueue) Len() int           { return len(q) }
func (q reminderQueue) Less(i, j int) bool { return q[i].fireAt.Before(q[j].fireAt) }
func (q reminderQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *reminderQueue) Push(x any) {
	r := x.(*reminder)
	r.index = len(*q)
	*q = append(*q, r)
}

func (q *reminderQueue) Pop() any {
	old := *q
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.index = -1
	*q = old[:n-1]
	return r
}

// ReminderModel keeps at most one pending reminder per scheduled meeting in
// process memory and mails participants when it is due. Pending reminders
// are rebuilt from storage on boot by Rehydrate.
type ReminderModel struct {
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	ds      *storage.Facade
	mailer  mailer.Mailer
	pool    *workerpool.WorkerPool
	queue   reminderQueue
	pending map[string]*reminder
	wake    chan struct{}
	closed  bool
	now     func() time.Time
	logger  *logrus.Entry
}

func NewReminderModel(mainCtx context.Context, app *config.AppConfig, ds *storage.Facade, ml mailer.Mailer, logger *logrus.Logger) *ReminderModel {
	ctx, cancel := context.WithCancel(mainCtx)
	return &ReminderModel{
		ctx:     ctx,
		cancel:  cancel,
		ds:      ds,
		mailer:  ml,
		pool:    workerpool.New(app.ReminderSettings.Workers),
		pending: make(map[string]*reminder),
		wake:    make(chan struct{}, 1),
		now:     time.Now,
		logger:  logger.WithField("model", "reminder"),
	}
}

// nextFire finds the first occurrence of m whose reminder is still ahead.
func (m *ReminderModel) nextFire(meeting *domain.ScheduledMeeting) (occurrence, fireAt time.Time, ok bool) {
	if meeting.ReminderTime == nil || *meeting.ReminderTime <= 0 {
		return
	}
	switch meeting.Status {
	case domain.ScheduledStatusCancelled, domain.ScheduledStatusCompleted:
		return
	}
	occurrences, err := meeting.Occurrences(0)
	if err != nil {
		m.logger.WithError(err).WithField("meetingId", meeting.Id).Warnln("cannot expand recurrence")
		return
	}
	offset := time.Duration(*meeting.ReminderTime) * time.Minute
	now := m.now()
	for _, o := range occurrences {
		if f := o.Add(-offset); f.After(now) {
			return o, f, true
		}
	}
	return
}

// Schedule arms the reminder of meeting, replacing any pending one. It
// returns false when there is nothing to arm.
func (m *ReminderModel) Schedule(meeting *domain.ScheduledMeeting) bool {
	occurrence, fireAt, ok := m.nextFire(meeting)

	m.mu.Lock()
	m.remove(meeting.Id)
	if ok {
		r := &reminder{meetingId: meeting.Id, occurrence: occurrence, fireAt: fireAt}
		heap.Push(&m.queue, r)
		m.pending[meeting.Id] = r
	}
	m.mu.Unlock()

	if ok {
		m.notify()
		m.logger.WithFields(logrus.Fields{
			"meetingId": meeting.Id,
			"fireAt":    fireAt,
		}).Debugln("reminder armed")
	}
	return ok
}

// Cancel drops the pending reminder of meetingId, if any.
func (m *ReminderModel) Cancel(meetingId string) bool {
	m.mu.Lock()
	removed := m.remove(meetingId)
	m.mu.Unlock()
	if removed {
		m.notify()
	}
	return removed
}

// remove must be called with mu held.
func (m *ReminderModel) remove(meetingId string) bool {
	r, ok := m.pending[meetingId]
	if !ok {
		return false
	}
	heap.Remove(&m.queue, r.index)
	delete(m.pending, meetingId)
	return true
}

// FireAt reports when the reminder of meetingId is due.
func (m *ReminderModel) FireAt(meetingId string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.pending[meetingId]
	if !ok {
		return time.Time{}, false
	}
	return r.fireAt, true
}

func (m *ReminderModel) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *ReminderModel) notify() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Rehydrate arms reminders for every stored meeting that still has one
// ahead. It returns how many were armed.
func (m *ReminderModel) Rehydrate(ctx context.Context) int {
	var n int
	for _, meeting := range m.ds.GetAllScheduledMeetings(ctx) {
		if m.Schedule(meeting) {
			n++
		}
	}
	m.logger.WithField("armed", n).Infoln("reminders restored from storage")
	return n
}

// StartReminders runs the timer loop until Shutdown.
func (m *ReminderModel) StartReminders() {
	m.logger.Infoln("reminder loop started")
	for {
		var timer *time.Timer
		var due <-chan time.Time

		m.mu.Lock()
		if len(m.queue) > 0 {
			timer = time.NewTimer(max(m.queue[0].fireAt.Sub(m.now()), 0))
			due = timer.C
		}
		m.mu.Unlock()

		select {
		case <-m.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			m.logger.Infoln("reminder loop stopped")
			return
		case <-m.wake:
			if timer != nil {
				timer.Stop()
			}
		case <-due:
			m.fireDue()
		}
	}
}

func (m *ReminderModel) fireDue() {
	now := m.now()
	var ready []*reminder

	m.mu.Lock()
	for len(m.queue) > 0 && !m.queue[0].fireAt.After(now) {
		r := heap.Pop(&m.queue).(*reminder)
		delete(m.pending, r.meetingId)
		ready = append(ready, r)
	}
	m.mu.Unlock()

	for _, r := range ready {
		m.dispatch(r)
	}
}

// dispatch reads the meeting again so edits made after arming are honoured,
// mails each participant and arms the next occurrence.
func (m *ReminderModel) dispatch(r *reminder) {
	meeting := m.ds.GetScheduledMeeting(m.ctx, r.meetingId)
	if meeting == nil || meeting.Status == domain.ScheduledStatusCancelled {
		return
	}

	occ := *meeting
	occ.ScheduledDateTime = r.occurrence
	log := m.logger.WithField("meetingId", meeting.Id)
	for _, email := range meeting.ParticipantEmails() {
		m.submit(func(ctx context.Context) {
			if err := m.mailer.SendMeetingReminder(ctx, &occ, email); err != nil {
				log.WithError(err).WithField("email", email).Errorln("failed to send reminder")
			}
		})
	}
	log.WithField("occurrence", r.occurrence).Infoln("reminder dispatched")

	if meeting.IsRecurring {
		m.Schedule(meeting)
	}
}

// SendInvites mails every participant of meeting in the background.
func (m *ReminderModel) SendInvites(meeting *domain.ScheduledMeeting) {
	emails := meeting.ParticipantEmails()
	if len(emails) == 0 {
		return
	}
	m.submit(func(ctx context.Context) {
		if err := m.mailer.SendMeetingInvite(ctx, meeting, emails); err != nil {
			m.logger.WithError(err).WithField("meetingId", meeting.Id).Errorln("failed to send invites")
		}
	})
}

// submit queues a mail task. Tasks already queued still run during
// Shutdown, so they get a context that outlives the loop.
func (m *ReminderModel) submit(task func(ctx context.Context)) {
	ctx := context.WithoutCancel(m.ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.pool.Submit(func() {
		task(ctx)
	})
}

func (m *ReminderModel) Shutdown() {
	m.cancel()
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.pool.StopWait()
}
