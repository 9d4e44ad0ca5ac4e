// Package mongodriver is the document store backend on MongoDB. Each
// entity is one document keyed by its id.
package mongodriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/services/storage/backend"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var _ backend.Driver = (*Driver)(nil)

type Driver struct {
	client   *mongo.Client
	rooms    *mongo.Collection
	meetings *mongo.Collection
	history  *mongo.Collection
	subs     *mongo.Collection
	logger   *logrus.Entry
}

// Open connects with a mongodb:// or mongodb+srv:// uri and pings the
// primary.
func Open(ctx context.Context, uri, database string, log *logrus.Logger) (*Driver, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	db := client.Database(database)
	d := &Driver{
		client:   client,
		rooms:    db.Collection(config.FormatDBTable(config.TableRooms)),
		meetings: db.Collection(config.FormatDBTable(config.TableScheduledMeetings)),
		history:  db.Collection(config.FormatDBTable(config.TableMeetingHistory)),
		subs:     db.Collection(config.FormatDBTable(config.TableSubscriptions)),
		logger: log.WithFields(logrus.Fields{
			"driver":   "mongo",
			"database": database,
		}),
	}

	if err = d.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return d, nil
}

func (d *Driver) Kind() backend.Kind {
	return backend.KindDocumentStore
}

func (d *Driver) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the secondary indexes used by range and host
// queries. Creating an existing index is a no-op.
func (d *Driver) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		field string
	}{
		{d.rooms, "expires_at"},
		{d.meetings, "scheduled_datetime"},
		{d.meetings, "host_id"},
		{d.history, "host_id"},
		{d.subs, "expires_at"},
		{d.subs, "plan_id"},
	}
	for _, idx := range indexes {
		_, err := idx.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: idx.field, Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("index %s.%s: %w", idx.coll.Name(), idx.field, err)
		}
	}
	return nil
}

func (d *Driver) Close() error {
	return d.client.Disconnect(context.Background())
}

// dropDatabase is used by tests to leave the server clean.
func (d *Driver) dropDatabase(ctx context.Context) error {
	return d.rooms.Database().Drop(ctx)
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	doc := new(T)
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any) ([]T, error) {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []T
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
