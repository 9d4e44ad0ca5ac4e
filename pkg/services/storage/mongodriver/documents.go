package mongodriver

import (
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
)

type roomDoc struct {
	Id            string                   `bson:"_id"`
	Name          string                   `bson:"name"`
	CreatedBy     string                   `bson:"created_by"`
	MainHost      *string                  `bson:"main_host"`
	OriginalHost  *string                  `bson:"original_host"`
	HostId        *string                  `bson:"host_id"`
	Moderators    []string                 `bson:"moderators"`
	Participants  []domain.RoomParticipant `bson:"participants"`
	WaitingRoom   []domain.RoomParticipant `bson:"waiting_room"`
	Password      string                   `bson:"password"`
	MeetingStatus string                   `bson:"meeting_status"`
	IsRecording   bool                     `bson:"is_recording"`
	IsStreaming   bool                     `bson:"is_streaming"`
	StreamingInfo *domain.StreamInfo       `bson:"streaming_info"`
	Chat          []domain.ChatMessage     `bson:"chat"`
	Polls         []domain.Poll            `bson:"polls"`
	Files         []domain.SharedFile      `bson:"files"`
	Reactions     []domain.Reaction        `bson:"reactions"`
	Settings      domain.RoomSettings      `bson:"settings"`
	CreatedAt     time.Time                `bson:"created_at"`
	StartedAt     *time.Time               `bson:"started_at"`
	EndedAt       *time.Time               `bson:"ended_at"`
	ExpiresAt     *time.Time               `bson:"expires_at"`
}

func toRoomDoc(r *domain.Room) *roomDoc {
	return &roomDoc{
		Id:            r.Id,
		Name:          r.Name,
		CreatedBy:     r.CreatedBy,
		MainHost:      r.MainHost,
		OriginalHost:  r.OriginalHost,
		HostId:        r.HostId,
		Moderators:    r.Moderators,
		Participants:  r.Participants,
		WaitingRoom:   r.WaitingRoom,
		Password:      r.Password,
		MeetingStatus: string(r.MeetingStatus),
		IsRecording:   r.IsRecording,
		IsStreaming:   r.IsStreaming,
		StreamingInfo: r.StreamingInfo,
		Chat:          r.Chat,
		Polls:         r.Polls,
		Files:         r.Files,
		Reactions:     r.Reactions,
		Settings:      r.Settings,
		CreatedAt:     r.CreatedAt,
		StartedAt:     r.StartedAt,
		EndedAt:       r.EndedAt,
		ExpiresAt:     r.ExpiresAt,
	}
}

func (doc *roomDoc) room() *domain.Room {
	return &domain.Room{
		Id:            doc.Id,
		Name:          doc.Name,
		CreatedBy:     doc.CreatedBy,
		MainHost:      doc.MainHost,
		OriginalHost:  doc.OriginalHost,
		HostId:        doc.HostId,
		Moderators:    doc.Moderators,
		Participants:  doc.Participants,
		WaitingRoom:   doc.WaitingRoom,
		Password:      doc.Password,
		MeetingStatus: domain.MeetingStatus(doc.MeetingStatus),
		IsRecording:   doc.IsRecording,
		IsStreaming:   doc.IsStreaming,
		StreamingInfo: doc.StreamingInfo,
		Chat:          doc.Chat,
		Polls:         doc.Polls,
		Files:         doc.Files,
		Reactions:     doc.Reactions,
		Settings:      doc.Settings,
		CreatedAt:     doc.CreatedAt.UTC(),
		StartedAt:     utcPtr(doc.StartedAt),
		EndedAt:       utcPtr(doc.EndedAt),
		ExpiresAt:     utcPtr(doc.ExpiresAt),
	}
}

type meetingDoc struct {
	Id                string                      `bson:"_id"`
	RoomId            string                      `bson:"room_id"`
	HostId            string                      `bson:"host_id"`
	Title             string                      `bson:"title"`
	Description       string                      `bson:"description"`
	ScheduledDate     string                      `bson:"scheduled_date"`
	ScheduledTime     string                      `bson:"scheduled_time"`
	Timezone          string                      `bson:"timezone"`
	ScheduledDateTime time.Time                   `bson:"scheduled_datetime"`
	Duration          int64                       `bson:"duration"`
	RoomPassword      string                      `bson:"room_password"`
	ReminderTime      *int64                      `bson:"reminder_time"`
	Participants      []domain.MeetingParticipant `bson:"participants"`
	IsRecurring       bool                        `bson:"is_recurring"`
	RecurrencePattern string                      `bson:"recurrence_pattern"`
	RecurrenceEndDate *string                     `bson:"recurrence_end_date"`
	RecurrenceCount   *int64                      `bson:"recurrence_count"`
	Status            string                      `bson:"status"`
	CreatedAt         time.Time                   `bson:"created_at"`
	UpdatedAt         time.Time                   `bson:"updated_at"`
}

func toMeetingDoc(m *domain.ScheduledMeeting) *meetingDoc {
	return &meetingDoc{
		Id:                m.Id,
		RoomId:            m.RoomId,
		HostId:            m.HostId,
		Title:             m.Title,
		Description:       m.Description,
		ScheduledDate:     m.ScheduledDate,
		ScheduledTime:     m.ScheduledTime,
		Timezone:          m.Timezone,
		ScheduledDateTime: m.ScheduledDateTime,
		Duration:          m.Duration,
		RoomPassword:      m.RoomPassword,
		ReminderTime:      m.ReminderTime,
		Participants:      m.Participants,
		IsRecurring:       m.IsRecurring,
		RecurrencePattern: string(m.RecurrencePattern),
		RecurrenceEndDate: m.RecurrenceEndDate,
		RecurrenceCount:   m.RecurrenceCount,
		Status:            string(m.Status),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (doc *meetingDoc) meeting() *domain.ScheduledMeeting {
	return &domain.ScheduledMeeting{
		Id:                doc.Id,
		RoomId:            doc.RoomId,
		HostId:            doc.HostId,
		Title:             doc.Title,
		Description:       doc.Description,
		ScheduledDate:     doc.ScheduledDate,
		ScheduledTime:     doc.ScheduledTime,
		Timezone:          doc.Timezone,
		ScheduledDateTime: doc.ScheduledDateTime.UTC(),
		Duration:          doc.Duration,
		RoomPassword:      doc.RoomPassword,
		ReminderTime:      doc.ReminderTime,
		Participants:      doc.Participants,
		IsRecurring:       doc.IsRecurring,
		RecurrencePattern: domain.RecurrencePattern(doc.RecurrencePattern),
		RecurrenceEndDate: doc.RecurrenceEndDate,
		RecurrenceCount:   doc.RecurrenceCount,
		Status:            domain.ScheduledStatus(doc.Status),
		CreatedAt:         doc.CreatedAt.UTC(),
		UpdatedAt:         doc.UpdatedAt.UTC(),
	}
}

type historyDoc struct {
	Id                string    `bson:"_id"`
	RoomId            string    `bson:"room_id"`
	HostId            string    `bson:"host_id"`
	Title             string    `bson:"title"`
	Duration          int64     `bson:"duration"`
	ParticipantsCount int64     `bson:"participants_count"`
	Status            string    `bson:"status"`
	CreatedAt         time.Time `bson:"created_at"`
}

func toHistoryDoc(e *domain.MeetingHistoryEntry) *historyDoc {
	return &historyDoc{
		Id:                e.Id,
		RoomId:            e.RoomId,
		HostId:            e.HostId,
		Title:             e.Title,
		Duration:          e.Duration,
		ParticipantsCount: e.ParticipantsCount,
		Status:            e.Status,
		CreatedAt:         e.CreatedAt,
	}
}

func (doc *historyDoc) entry() *domain.MeetingHistoryEntry {
	return &domain.MeetingHistoryEntry{
		Id:                doc.Id,
		RoomId:            doc.RoomId,
		HostId:            doc.HostId,
		Title:             doc.Title,
		Duration:          doc.Duration,
		ParticipantsCount: doc.ParticipantsCount,
		Status:            doc.Status,
		CreatedAt:         doc.CreatedAt.UTC(),
	}
}

type subscriptionDoc struct {
	UserId                string          `bson:"_id"`
	PlanId                string          `bson:"plan_id"`
	Status                string          `bson:"status"`
	BillingCycle          string          `bson:"billing_cycle"`
	CallMinutes           int64           `bson:"call_minutes"`
	CallMinutesUsed       int64           `bson:"call_minutes_used"`
	MaxParticipants       int64           `bson:"max_participants"`
	Features              domain.Features `bson:"features"`
	StartedAt             time.Time       `bson:"started_at"`
	ExpiresAt             *time.Time      `bson:"expires_at"`
	CancelledAt           *time.Time      `bson:"cancelled_at"`
	AdminGranted          bool            `bson:"admin_granted"`
	PaymentCustomerId     *string         `bson:"payment_customer_id"`
	PaymentSubscriptionId *string         `bson:"payment_subscription_id"`
	UpdatedAt             time.Time       `bson:"updated_at"`
}

func toSubscriptionDoc(s *domain.Subscription) *subscriptionDoc {
	return &subscriptionDoc{
		UserId:                s.UserId,
		PlanId:                string(s.PlanId),
		Status:                string(s.Status),
		BillingCycle:          string(s.BillingCycle),
		CallMinutes:           s.CallMinutes,
		CallMinutesUsed:       s.CallMinutesUsed,
		MaxParticipants:       s.MaxParticipants,
		Features:              s.Features,
		StartedAt:             s.StartedAt,
		ExpiresAt:             s.ExpiresAt,
		CancelledAt:           s.CancelledAt,
		AdminGranted:          s.AdminGranted,
		PaymentCustomerId:     s.PaymentCustomerId,
		PaymentSubscriptionId: s.PaymentSubscriptionId,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (doc *subscriptionDoc) subscription() *domain.Subscription {
	return &domain.Subscription{
		UserId:                doc.UserId,
		PlanId:                domain.PlanId(doc.PlanId),
		Status:                domain.SubscriptionStatus(doc.Status),
		BillingCycle:          domain.BillingCycle(doc.BillingCycle),
		CallMinutes:           doc.CallMinutes,
		CallMinutesUsed:       doc.CallMinutesUsed,
		MaxParticipants:       doc.MaxParticipants,
		Features:              doc.Features,
		StartedAt:             doc.StartedAt.UTC(),
		ExpiresAt:             utcPtr(doc.ExpiresAt),
		CancelledAt:           utcPtr(doc.CancelledAt),
		AdminGranted:          doc.AdminGranted,
		PaymentCustomerId:     doc.PaymentCustomerId,
		PaymentSubscriptionId: doc.PaymentSubscriptionId,
		UpdatedAt:             doc.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
