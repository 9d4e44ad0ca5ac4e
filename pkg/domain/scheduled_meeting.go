package domain

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

type ScheduledStatus string

const (
	ScheduledStatusScheduled ScheduledStatus = "scheduled"
	ScheduledStatusActive    ScheduledStatus = "active"
	ScheduledStatusCompleted ScheduledStatus = "completed"
	ScheduledStatusCancelled ScheduledStatus = "cancelled"
)

type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
	RecurrenceYearly  RecurrencePattern = "yearly"
)

const (
	DefaultMeetingDuration = 60
	DateLayout             = "2006-01-02"
	TimeLayout             = "15:04"
	maxOccurrences         = 366
)

func (p RecurrencePattern) valid() bool {
	switch p {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

func (s ScheduledStatus) valid() bool {
	switch s {
	case ScheduledStatusScheduled, ScheduledStatusActive, ScheduledStatusCompleted, ScheduledStatusCancelled:
		return true
	}
	return false
}

// MeetingParticipant accepts either a bare email string or an {"email": ...} object.
type MeetingParticipant struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (p *MeetingParticipant) UnmarshalJSON(data []byte) error {
	var email string
	if err := json.Unmarshal(data, &email); err == nil {
		p.Email = email
		return nil
	}
	type alias MeetingParticipant
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = MeetingParticipant(a)
	return nil
}

type ScheduledMeeting struct {
	Id                string               `json:"id"`
	RoomId            string               `json:"roomId"`
	HostId            string               `json:"hostId"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	ScheduledDate     string               `json:"scheduledDate"`
	ScheduledTime     string               `json:"scheduledTime"`
	Timezone          string               `json:"timezone"`
	ScheduledDateTime time.Time            `json:"scheduledDateTime"`
	Duration          int64                `json:"duration"`
	RoomPassword      string               `json:"roomPassword"`
	ReminderTime      *int64               `json:"reminderTime"`
	Participants      []MeetingParticipant `json:"participants"`
	IsRecurring       bool                 `json:"isRecurring"`
	RecurrencePattern RecurrencePattern    `json:"recurrencePattern"`
	RecurrenceEndDate *string              `json:"recurrenceEndDate"`
	RecurrenceCount   *int64               `json:"recurrenceCount"`
	Status            ScheduledStatus      `json:"status"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

type ScheduleMeetingRequest struct {
	HostId            string               `json:"-"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	ScheduledDate     string               `json:"scheduledDate"`
	ScheduledTime     string               `json:"scheduledTime"`
	Timezone          string               `json:"timezone"`
	Duration          int64                `json:"duration"`
	Password          string               `json:"password"`
	ReminderTime      *int64               `json:"reminderTime"`
	Participants      []MeetingParticipant `json:"participants"`
	IsRecurring       bool                 `json:"isRecurring"`
	RecurrencePattern RecurrencePattern    `json:"recurrencePattern"`
	RecurrenceEndDate *string              `json:"recurrenceEndDate"`
	RecurrenceCount   *int64               `json:"recurrenceCount"`
}

// ScheduledMeetingPatch carries a partial update; nil fields are left alone.
// A zero ReminderTime clears the reminder.
type ScheduledMeetingPatch struct {
	Title             *string               `json:"title"`
	Description       *string               `json:"description"`
	ScheduledDate     *string               `json:"scheduledDate"`
	ScheduledTime     *string               `json:"scheduledTime"`
	Timezone          *string               `json:"timezone"`
	Duration          *int64                `json:"duration"`
	ReminderTime      *int64                `json:"reminderTime"`
	Participants      *[]MeetingParticipant `json:"participants"`
	IsRecurring       *bool                 `json:"isRecurring"`
	RecurrencePattern *RecurrencePattern    `json:"recurrencePattern"`
	RecurrenceEndDate *string               `json:"recurrenceEndDate"`
	RecurrenceCount   *int64                `json:"recurrenceCount"`
	Status            *ScheduledStatus      `json:"status"`
}

// CombineDateTime turns a local date and time into one instant.
func CombineDateTime(date, clock, timezone string) (time.Time, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, NewValidationFault("unknown timezone %q", timezone)
		}
		loc = l
	}

	layout := DateLayout + " " + TimeLayout
	if strings.Count(clock, ":") == 2 {
		layout += ":05"
	}
	t, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, NewValidationFault("invalid scheduled date %q or time %q", date, clock)
	}
	return t.UTC(), nil
}

// NewScheduledMeeting validates the request and links the meeting to room.
func NewScheduledMeeting(req *ScheduleMeetingRequest, room *Room) (*ScheduledMeeting, error) {
	if strings.TrimSpace(req.Title) == "" || req.ScheduledDate == "" || req.ScheduledTime == "" {
		return nil, NewValidationFault("title, scheduledDate and scheduledTime are required")
	}
	at, err := CombineDateTime(req.ScheduledDate, req.ScheduledTime, req.Timezone)
	if err != nil {
		return nil, err
	}

	now := Now()
	m := &ScheduledMeeting{
		Id:                uuid.NewString(),
		RoomId:            room.Id,
		HostId:            req.HostId,
		Title:             req.Title,
		Description:       req.Description,
		ScheduledDate:     req.ScheduledDate,
		ScheduledTime:     req.ScheduledTime,
		Timezone:          req.Timezone,
		ScheduledDateTime: at,
		Duration:          req.Duration,
		RoomPassword:      room.Password,
		ReminderTime:      req.ReminderTime,
		Participants:      req.Participants,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
		RecurrenceEndDate: req.RecurrenceEndDate,
		RecurrenceCount:   req.RecurrenceCount,
		Status:            ScheduledStatusScheduled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if m.Duration <= 0 {
		m.Duration = DefaultMeetingDuration
	}
	if m.RecurrencePattern == "" {
		m.RecurrencePattern = RecurrenceNone
	}
	if !m.RecurrencePattern.valid() {
		return nil, NewValidationFault("unknown recurrence pattern %q", m.RecurrencePattern)
	}
	m.Normalize()

	return m, nil
}

// Normalize fills defaults for fields absent in older records.
func (m *ScheduledMeeting) Normalize() {
	if m.Participants == nil {
		m.Participants = []MeetingParticipant{}
	}
	if m.RecurrencePattern == "" {
		m.RecurrencePattern = RecurrenceNone
	}
	if m.Status == "" {
		m.Status = ScheduledStatusScheduled
	}
	if m.Duration <= 0 {
		m.Duration = DefaultMeetingDuration
	}
}

// Apply mutates only the fields present in p. scheduledDateTime is derived
// again from the resulting date and time whenever either of them is present.
func (m *ScheduledMeeting) Apply(p *ScheduledMeetingPatch) error {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return NewValidationFault("title cannot be empty")
		}
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}

	date, clock, tz := m.ScheduledDate, m.ScheduledTime, m.Timezone
	if p.ScheduledDate != nil {
		date = *p.ScheduledDate
	}
	if p.ScheduledTime != nil {
		clock = *p.ScheduledTime
	}
	if p.Timezone != nil {
		tz = *p.Timezone
	}
	if p.ScheduledDate != nil || p.ScheduledTime != nil || p.Timezone != nil {
		at, err := CombineDateTime(date, clock, tz)
		if err != nil {
			return err
		}
		m.ScheduledDate, m.ScheduledTime, m.Timezone = date, clock, tz
		m.ScheduledDateTime = at
	}

	if p.Duration != nil {
		if *p.Duration <= 0 {
			return NewValidationFault("duration must be positive")
		}
		m.Duration = *p.Duration
	}
	if p.ReminderTime != nil {
		if *p.ReminderTime <= 0 {
			m.ReminderTime = nil
		} else {
			v := *p.ReminderTime
			m.ReminderTime = &v
		}
	}
	if p.Participants != nil {
		m.Participants = *p.Participants
	}
	if p.IsRecurring != nil {
		m.IsRecurring = *p.IsRecurring
	}
	if p.RecurrencePattern != nil {
		if !p.RecurrencePattern.valid() {
			return NewValidationFault("unknown recurrence pattern %q", *p.RecurrencePattern)
		}
		m.RecurrencePattern = *p.RecurrencePattern
	}
	if p.RecurrenceEndDate != nil {
		m.RecurrenceEndDate = p.RecurrenceEndDate
	}
	if p.RecurrenceCount != nil {
		m.RecurrenceCount = p.RecurrenceCount
	}
	if p.Status != nil {
		if !p.Status.valid() {
			return NewValidationFault("unknown status %q", *p.Status)
		}
		m.Status = *p.Status
	}

	m.Normalize()
	m.UpdatedAt = Now()
	return nil
}

// ReminderAt returns when the reminder should fire, or false when the meeting has none.
func (m *ScheduledMeeting) ReminderAt() (time.Time, bool) {
	if m.ReminderTime == nil || *m.ReminderTime <= 0 {
		return time.Time{}, false
	}
	return m.ScheduledDateTime.Add(-time.Duration(*m.ReminderTime) * time.Minute), true
}

// ParticipantEmails returns the non-empty participant emails, deduplicated.
func (m *ScheduledMeeting) ParticipantEmails() []string {
	seen := make(map[string]struct{}, len(m.Participants))
	emails := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		e := strings.TrimSpace(p.Email)
		if e == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(e)]; ok {
			continue
		}
		seen[strings.ToLower(e)] = struct{}{}
		emails = append(emails, e)
	}
	return emails
}

// Occurrences lists the start instants of the meeting, expanding the
// recurrence when there is one. At most limit instants are returned.
func (m *ScheduledMeeting) Occurrences(limit int) ([]time.Time, error) {
	if limit <= 0 || limit > maxOccurrences {
		limit = maxOccurrences
	}
	if !m.IsRecurring || m.RecurrencePattern == RecurrenceNone {
		return []time.Time{m.ScheduledDateTime}, nil
	}

	var freq rrule.Frequency
	switch m.RecurrencePattern {
	case RecurrenceDaily:
		freq = rrule.DAILY
	case RecurrenceWeekly:
		freq = rrule.WEEKLY
	case RecurrenceMonthly:
		freq = rrule.MONTHLY
	case RecurrenceYearly:
		freq = rrule.YEARLY
	default:
		return nil, NewValidationFault("unknown recurrence pattern %q", m.RecurrencePattern)
	}

	opt := rrule.ROption{
		Freq:    freq,
		Dtstart: m.ScheduledDateTime,
		Count:   limit,
	}
	if m.RecurrenceCount != nil && *m.RecurrenceCount > 0 && int(*m.RecurrenceCount) < limit {
		opt.Count = int(*m.RecurrenceCount)
	}
	if m.RecurrenceEndDate != nil && *m.RecurrenceEndDate != "" {
		until, err := CombineDateTime(*m.RecurrenceEndDate, "23:59:59", m.Timezone)
		if err != nil {
			return nil, err
		}
		opt.Until = until
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, NewValidationFault("invalid recurrence: %v", err)
	}
	return r.All(), nil
}
