package sqldriver

import (
	"github.com/mynaparrot/meethub-server/pkg/config"
)

var roomsTable = &table{
	base: config.TableRooms,
	key:  "id",
	columns: []string{
		"id", "name", "created_by", "main_host", "original_host", "host_id", "moderators",
		"participants", "waiting_room", "password", "meeting_status", "is_recording",
		"is_streaming", "streaming_info", "chat", "polls", "files", "reactions", "settings",
		"created_at", "started_at", "ended_at", "expires_at",
	},
	mutable: []string{
		"name", "created_by", "main_host", "original_host", "host_id", "moderators",
		"participants", "waiting_room", "password", "meeting_status", "is_recording",
		"is_streaming", "streaming_info", "chat", "polls", "files", "reactions", "settings",
		"started_at", "ended_at", "expires_at",
	},
	indexes: map[string]string{"expires_at": "expires_at"},
	types: func(t columnTypes) map[string]string {
		return map[string]string{
			"id":             t.id + " NOT NULL",
			"name":           t.text + " NOT NULL",
			"created_by":     t.text + " NOT NULL",
			"main_host":      t.text,
			"original_host":  t.text,
			"host_id":        t.text,
			"moderators":     t.json + " NOT NULL",
			"participants":   t.json + " NOT NULL",
			"waiting_room":   t.json + " NOT NULL",
			"password":       t.text + " NOT NULL",
			"meeting_status": t.text + " NOT NULL",
			"is_recording":   t.boolean + " NOT NULL",
			"is_streaming":   t.boolean + " NOT NULL",
			"streaming_info": t.json + " NOT NULL",
			"chat":           t.json + " NOT NULL",
			"polls":          t.json + " NOT NULL",
			"files":          t.json + " NOT NULL",
			"reactions":      t.json + " NOT NULL",
			"settings":       t.json + " NOT NULL",
			"created_at":     t.timestamp + " NOT NULL",
			"started_at":     t.timestamp + " NULL",
			"ended_at":       t.timestamp + " NULL",
			"expires_at":     t.timestamp + " NULL",
		}
	},
}

var meetingsTable = &table{
	base: config.TableScheduledMeetings,
	key:  "id",
	columns: []string{
		"id", "room_id", "host_id", "title", "description", "scheduled_date", "scheduled_time",
		"timezone", "scheduled_datetime", "duration", "room_password", "reminder_time",
		"participants", "is_recurring", "recurrence_pattern", "recurrence_end_date",
		"recurrence_count", "status", "created_at", "updated_at",
	},
	mutable: []string{
		"room_id", "host_id", "title", "description", "scheduled_date", "scheduled_time",
		"timezone", "scheduled_datetime", "duration", "room_password", "reminder_time",
		"participants", "is_recurring", "recurrence_pattern", "recurrence_end_date",
		"recurrence_count", "status", "updated_at",
	},
	indexes: map[string]string{
		"scheduled_datetime": "scheduled_datetime",
		"host_id":            "host_id",
	},
	types: func(t columnTypes) map[string]string {
		return map[string]string{
			"id":                  t.id + " NOT NULL",
			"room_id":             t.id + " NOT NULL",
			"host_id":             t.text + " NOT NULL",
			"title":               t.text + " NOT NULL",
			"description":         t.long + " NOT NULL",
			"scheduled_date":      t.text + " NOT NULL",
			"scheduled_time":      t.text + " NOT NULL",
			"timezone":            t.text + " NOT NULL",
			"scheduled_datetime":  t.timestamp + " NOT NULL",
			"duration":            t.integer + " NOT NULL",
			"room_password":       t.text + " NOT NULL",
			"reminder_time":       t.integer + " NULL",
			"participants":        t.json + " NOT NULL",
			"is_recurring":        t.boolean + " NOT NULL",
			"recurrence_pattern":  t.text + " NOT NULL",
			"recurrence_end_date": t.text + " NULL",
			"recurrence_count":    t.integer + " NULL",
			"status":              t.text + " NOT NULL",
			"created_at":          t.timestamp + " NOT NULL",
			"updated_at":          t.timestamp + " NOT NULL",
		}
	},
}

var historyTable = &table{
	base: config.TableMeetingHistory,
	key:  "id",
	columns: []string{
		"id", "room_id", "host_id", "title", "duration", "participants_count", "status", "created_at",
	},
	indexes: map[string]string{"host_id": "host_id"},
	types: func(t columnTypes) map[string]string {
		return map[string]string{
			"id":                 t.id + " NOT NULL",
			"room_id":            t.id + " NOT NULL",
			"host_id":            t.text + " NOT NULL",
			"title":              t.text + " NOT NULL",
			"duration":           t.integer + " NOT NULL",
			"participants_count": t.integer + " NOT NULL",
			"status":             t.text + " NOT NULL",
			"created_at":         t.timestamp + " NOT NULL",
		}
	},
}

var subscriptionsTable = &table{
	base: config.TableSubscriptions,
	key:  "user_id",
	columns: []string{
		"user_id", "plan_id", "status", "billing_cycle", "call_minutes", "call_minutes_used",
		"max_participants", "features", "started_at", "expires_at", "cancelled_at",
		"admin_granted", "payment_customer_id", "payment_subscription_id", "created_at", "updated_at",
	},
	mutable: []string{
		"plan_id", "status", "billing_cycle", "call_minutes", "call_minutes_used",
		"max_participants", "features", "started_at", "expires_at", "cancelled_at",
		"admin_granted", "payment_customer_id", "payment_subscription_id", "updated_at",
	},
	indexes: map[string]string{
		"expires_at": "expires_at",
		"plan_id":    "plan_id",
	},
	types: func(t columnTypes) map[string]string {
		return map[string]string{
			"user_id":                 t.text + " NOT NULL",
			"plan_id":                 t.text + " NOT NULL",
			"status":                  t.text + " NOT NULL",
			"billing_cycle":           t.text + " NOT NULL",
			"call_minutes":            t.integer + " NOT NULL",
			"call_minutes_used":       t.integer + " NOT NULL",
			"max_participants":        t.integer + " NOT NULL",
			"features":                t.json + " NOT NULL",
			"started_at":              t.timestamp + " NOT NULL",
			"expires_at":              t.timestamp + " NULL",
			"cancelled_at":            t.timestamp + " NULL",
			"admin_granted":           t.boolean + " NOT NULL",
			"payment_customer_id":     t.text + " NULL",
			"payment_subscription_id": t.text + " NULL",
			"created_at":              t.timestamp + " NOT NULL",
			"updated_at":              t.timestamp + " NOT NULL",
		}
	},
}

var allTables = []*table{roomsTable, meetingsTable, historyTable, subscriptionsTable}
