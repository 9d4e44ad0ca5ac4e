package backend

import (
	"slices"

	"github.com/mynaparrot/meethub-server/pkg/domain"
)

// Drivers without server-side ordering sort with these so every backend
// lists in the same order.

func SortRooms(rooms []*domain.Room) {
	slices.SortFunc(rooms, func(a, b *domain.Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareStrings(a.Id, b.Id)
	})
}

func SortScheduledMeetings(meetings []*domain.ScheduledMeeting) {
	slices.SortFunc(meetings, func(a, b *domain.ScheduledMeeting) int {
		if c := a.ScheduledDateTime.Compare(b.ScheduledDateTime); c != 0 {
			return c
		}
		return compareStrings(a.Id, b.Id)
	})
}

// SortHistory orders newest first.
func SortHistory(entries []*domain.MeetingHistoryEntry) {
	slices.SortFunc(entries, func(a, b *domain.MeetingHistoryEntry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareStrings(a.Id, b.Id)
	})
}

func SortSubscriptions(subs []*domain.Subscription) {
	slices.SortFunc(subs, func(a, b *domain.Subscription) int {
		return compareStrings(a.UserId, b.UserId)
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
