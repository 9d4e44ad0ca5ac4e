package gormdriver

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/meethub-server/pkg/dbmodels"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"gorm.io/datatypes"
)

func toJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func fromJSON(raw datatypes.JSON, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func roomToRow(r *domain.Room) (*dbmodels.Room, error) {
	row := &dbmodels.Room{
		ID:            r.Id,
		Name:          r.Name,
		CreatedBy:     r.CreatedBy,
		MainHost:      r.MainHost,
		OriginalHost:  r.OriginalHost,
		HostID:        r.HostId,
		Password:      r.Password,
		MeetingStatus: string(r.MeetingStatus),
		IsRecording:   r.IsRecording,
		IsStreaming:   r.IsStreaming,
		CreatedAt:     r.CreatedAt,
		StartedAt:     r.StartedAt,
		EndedAt:       r.EndedAt,
		ExpiresAt:     r.ExpiresAt,
	}

	cols := []struct {
		dst *datatypes.JSON
		src any
	}{
		{&row.Moderators, r.Moderators},
		{&row.Participants, r.Participants},
		{&row.WaitingRoom, r.WaitingRoom},
		{&row.StreamingInfo, r.StreamingInfo},
		{&row.Chat, r.Chat},
		{&row.Polls, r.Polls},
		{&row.Files, r.Files},
		{&row.Reactions, r.Reactions},
		{&row.Settings, r.Settings},
	}
	for _, c := range cols {
		v, err := toJSON(c.src)
		if err != nil {
			return nil, err
		}
		*c.dst = v
	}
	return row, nil
}

func rowToRoom(row *dbmodels.Room) (*domain.Room, error) {
	r := &domain.Room{
		Id:            row.ID,
		Name:          row.Name,
		CreatedBy:     row.CreatedBy,
		MainHost:      row.MainHost,
		OriginalHost:  row.OriginalHost,
		HostId:        row.HostID,
		Password:      row.Password,
		MeetingStatus: domain.MeetingStatus(row.MeetingStatus),
		IsRecording:   row.IsRecording,
		IsStreaming:   row.IsStreaming,
		CreatedAt:     utc(row.CreatedAt),
		StartedAt:     utcPtr(row.StartedAt),
		EndedAt:       utcPtr(row.EndedAt),
		ExpiresAt:     utcPtr(row.ExpiresAt),
	}

	cols := []struct {
		src datatypes.JSON
		dst any
	}{
		{row.Moderators, &r.Moderators},
		{row.Participants, &r.Participants},
		{row.WaitingRoom, &r.WaitingRoom},
		{row.StreamingInfo, &r.StreamingInfo},
		{row.Chat, &r.Chat},
		{row.Polls, &r.Polls},
		{row.Files, &r.Files},
		{row.Reactions, &r.Reactions},
		{row.Settings, &r.Settings},
	}
	for _, c := range cols {
		if err := fromJSON(c.src, c.dst); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func meetingToRow(m *domain.ScheduledMeeting) (*dbmodels.ScheduledMeeting, error) {
	participants, err := toJSON(m.Participants)
	if err != nil {
		return nil, err
	}
	return &dbmodels.ScheduledMeeting{
		ID:                m.Id,
		RoomID:            m.RoomId,
		HostID:            m.HostId,
		Title:             m.Title,
		Description:       m.Description,
		ScheduledDate:     m.ScheduledDate,
		ScheduledTime:     m.ScheduledTime,
		Timezone:          m.Timezone,
		ScheduledDatetime: m.ScheduledDateTime,
		Duration:          m.Duration,
		RoomPassword:      m.RoomPassword,
		ReminderTime:      m.ReminderTime,
		Participants:      participants,
		IsRecurring:       m.IsRecurring,
		RecurrencePattern: string(m.RecurrencePattern),
		RecurrenceEndDate: m.RecurrenceEndDate,
		RecurrenceCount:   m.RecurrenceCount,
		Status:            string(m.Status),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func rowToMeeting(row *dbmodels.ScheduledMeeting) (*domain.ScheduledMeeting, error) {
	m := &domain.ScheduledMeeting{
		Id:                row.ID,
		RoomId:            row.RoomID,
		HostId:            row.HostID,
		Title:             row.Title,
		Description:       row.Description,
		ScheduledDate:     row.ScheduledDate,
		ScheduledTime:     row.ScheduledTime,
		Timezone:          row.Timezone,
		ScheduledDateTime: utc(row.ScheduledDatetime),
		Duration:          row.Duration,
		RoomPassword:      row.RoomPassword,
		ReminderTime:      row.ReminderTime,
		IsRecurring:       row.IsRecurring,
		RecurrencePattern: domain.RecurrencePattern(row.RecurrencePattern),
		RecurrenceEndDate: row.RecurrenceEndDate,
		RecurrenceCount:   row.RecurrenceCount,
		Status:            domain.ScheduledStatus(row.Status),
		CreatedAt:         utc(row.CreatedAt),
		UpdatedAt:         utc(row.UpdatedAt),
	}
	if err := fromJSON(row.Participants, &m.Participants); err != nil {
		return nil, err
	}
	return m, nil
}

func historyToRow(e *domain.MeetingHistoryEntry) *dbmodels.MeetingHistory {
	return &dbmodels.MeetingHistory{
		ID:                e.Id,
		RoomID:            e.RoomId,
		HostID:            e.HostId,
		Title:             e.Title,
		Duration:          e.Duration,
		ParticipantsCount: e.ParticipantsCount,
		Status:            e.Status,
		CreatedAt:         e.CreatedAt,
	}
}

func rowToHistory(row *dbmodels.MeetingHistory) *domain.MeetingHistoryEntry {
	return &domain.MeetingHistoryEntry{
		Id:                row.ID,
		RoomId:            row.RoomID,
		HostId:            row.HostID,
		Title:             row.Title,
		Duration:          row.Duration,
		ParticipantsCount: row.ParticipantsCount,
		Status:            row.Status,
		CreatedAt:         utc(row.CreatedAt),
	}
}

func subscriptionToRow(s *domain.Subscription) (*dbmodels.Subscription, error) {
	features, err := toJSON(s.Features)
	if err != nil {
		return nil, err
	}
	return &dbmodels.Subscription{
		UserID:                s.UserId,
		PlanID:                string(s.PlanId),
		Status:                string(s.Status),
		BillingCycle:          string(s.BillingCycle),
		CallMinutes:           s.CallMinutes,
		CallMinutesUsed:       s.CallMinutesUsed,
		MaxParticipants:       s.MaxParticipants,
		Features:              features,
		StartedAt:             s.StartedAt,
		ExpiresAt:             s.ExpiresAt,
		CancelledAt:           s.CancelledAt,
		AdminGranted:          s.AdminGranted,
		PaymentCustomerID:     s.PaymentCustomerId,
		PaymentSubscriptionID: s.PaymentSubscriptionId,
		CreatedAt:             s.UpdatedAt,
		UpdatedAt:             s.UpdatedAt,
	}, nil
}

func rowToSubscription(row *dbmodels.Subscription) (*domain.Subscription, error) {
	s := &domain.Subscription{
		UserId:                row.UserID,
		PlanId:                domain.PlanId(row.PlanID),
		Status:                domain.SubscriptionStatus(row.Status),
		BillingCycle:          domain.BillingCycle(row.BillingCycle),
		CallMinutes:           row.CallMinutes,
		CallMinutesUsed:       row.CallMinutesUsed,
		MaxParticipants:       row.MaxParticipants,
		StartedAt:             utc(row.StartedAt),
		ExpiresAt:             utcPtr(row.ExpiresAt),
		CancelledAt:           utcPtr(row.CancelledAt),
		AdminGranted:          row.AdminGranted,
		PaymentCustomerId:     row.PaymentCustomerID,
		PaymentSubscriptionId: row.PaymentSubscriptionID,
		UpdatedAt:             utc(row.UpdatedAt),
	}
	if err := fromJSON(row.Features, &s.Features); err != nil {
		return nil, err
	}
	return s, nil
}
