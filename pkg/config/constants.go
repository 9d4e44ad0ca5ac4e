package config

import "time"

const (
	DefaultProbeTimeout    = 10 * time.Second
	DefaultMongoDatabase   = "meethub"
	DefaultMailSubject     = "meethub.mail"
	DefaultRoomTTL         = 24 * time.Hour
	DefaultCleanupInterval = 15 * time.Minute
	DefaultReminderWorkers = 4
	DefaultTokenValidity   = 24 * time.Hour

	// table names before prefixing
	TableRooms             = "rooms"
	TableScheduledMeetings = "scheduled_meetings"
	TableMeetingHistory    = "meeting_history"
	TableSubscriptions     = "subscriptions"
)
