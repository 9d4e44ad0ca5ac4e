package mongodriver

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"go.mongodb.org/mongo-driver/bson"
)

func (d *Driver) InsertMeetingHistory(ctx context.Context, e *domain.MeetingHistoryEntry) error {
	_, err := d.history.InsertOne(ctx, toHistoryDoc(e))
	return err
}

func (d *Driver) ListMeetingHistory(ctx context.Context, hostId string) ([]*domain.MeetingHistoryEntry, error) {
	filter := bson.M{}
	if hostId != "" {
		filter["host_id"] = hostId
	}

	docs, err := findAll[historyDoc](ctx, d.history, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.MeetingHistoryEntry, 0, len(docs))
	for i := range docs {
		entries = append(entries, docs[i].entry())
	}
	backend.SortHistory(entries)
	return entries, nil
}
