package domain

import (
	"time"

	"github.com/google/uuid"
)

// MeetingHistoryEntry is written once when a meeting ends and never changed.
type MeetingHistoryEntry struct {
	Id                string    `json:"id"`
	RoomId            string    `json:"roomId"`
	HostId            string    `json:"hostId"`
	Title             string    `json:"title"`
	Duration          int64     `json:"duration"`
	ParticipantsCount int64     `json:"participantsCount"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NewMeetingHistoryEntry summarises an ended room.
func NewMeetingHistoryEntry(r *Room, title string, participantsCount int64) *MeetingHistoryEntry {
	host := r.CreatedBy
	if r.OriginalHost != nil {
		host = *r.OriginalHost
	}
	if title == "" {
		title = r.Name
	}
	return &MeetingHistoryEntry{
		Id:                uuid.NewString(),
		RoomId:            r.Id,
		HostId:            host,
		Title:             title,
		Duration:          r.Duration(),
		ParticipantsCount: participantsCount,
		Status:            string(MeetingStatusEnded),
		CreatedAt:         Now(),
	}
}
