package mongodriver

import (
	"context"
	"time"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"go.mongodb.org/mongo-driver/bson"
)

func (d *Driver) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	doc, err := findOne[roomDoc](ctx, d.rooms, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.room(), nil
}

func (d *Driver) UpsertRoom(ctx context.Context, r *domain.Room) error {
	return replaceByID(ctx, d.rooms, r.Id, toRoomDoc(r))
}

func (d *Driver) DeleteRoom(ctx context.Context, id string) error {
	_, err := d.rooms.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (d *Driver) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	docs, err := findAll[roomDoc](ctx, d.rooms, bson.M{})
	if err != nil {
		return nil, err
	}

	rooms := make([]*domain.Room, 0, len(docs))
	for i := range docs {
		rooms = append(rooms, docs[i].room())
	}
	backend.SortRooms(rooms)
	return rooms, nil
}

// DeleteExpiredRooms relies on $lt never matching a null expires_at.
func (d *Driver) DeleteExpiredRooms(ctx context.Context, now time.Time) (int64, error) {
	res, err := d.rooms.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
