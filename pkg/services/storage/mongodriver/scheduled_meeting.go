package mongodriver

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"go.mongodb.org/mongo-driver/bson"
)

func (d *Driver) GetScheduledMeeting(ctx context.Context, id string) (*domain.ScheduledMeeting, error) {
	doc, err := findOne[meetingDoc](ctx, d.meetings, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.meeting(), nil
}

func (d *Driver) UpsertScheduledMeeting(ctx context.Context, m *domain.ScheduledMeeting) error {
	return replaceByID(ctx, d.meetings, m.Id, toMeetingDoc(m))
}

func (d *Driver) DeleteScheduledMeeting(ctx context.Context, id string) error {
	_, err := d.meetings.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (d *Driver) ListScheduledMeetings(ctx context.Context) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(ctx, bson.M{})
}

func (d *Driver) ListScheduledMeetingsByHost(ctx context.Context, hostId string) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(ctx, bson.M{"host_id": hostId})
}

func (d *Driver) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduledMeeting, error) {
	return d.findMeetings(ctx, bson.M{"scheduled_datetime": bson.M{"$gte": from, "$lt": to}})
}

func (d *Driver) findMeetings(ctx context.Context, filter bson.M) ([]*domain.ScheduledMeeting, error) {
	docs, err := findAll[meetingDoc](ctx, d.meetings, filter)
	if err != nil {
		return nil, err
	}

	meetings := make([]*domain.ScheduledMeeting, 0, len(docs))
	for i := range docs {
		meetings = append(meetings, docs[i].meeting())
	}
	backend.SortScheduledMeetings(meetings)
	return meetings, nil
}
