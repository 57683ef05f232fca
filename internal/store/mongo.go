package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const maxRetries = 3

// Mongo implements Store over a single MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    *zap.SugaredLogger
}

func NewMongo(ctx context.Context, uri, database, collection string, log *zap.SugaredLogger) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	m := &Mongo{client: client, coll: coll, log: log}
	m.ensureIndexes(connectCtx)
	log.Infow("mongo connected", "database", database, "collection", collection)
	return m, nil
}

// ensureIndexes backs the application-level uniqueness pre-checks with
// store-level unique constraints. Sparse, since documents of other kinds
// do not carry these fields.
func (m *Mongo) ensureIndexes(ctx context.Context) {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		m.log.Warnw("mongo index creation failed", "error", err)
	}
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Get(ctx context.Context, id string) (Document, error) {
	return retry(ctx, func() (Document, error) {
		var doc Document
		err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return doc, nil
	})
}

func (m *Mongo) Upsert(ctx context.Context, id string, doc Document) error {
	_, err := retry(ctx, func() (struct{}, error) {
		_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
		return struct{}{}, err
	})
	return err
}

func (m *Mongo) Remove(ctx context.Context, id string) error {
	_, err := retry(ctx, func() (struct{}, error) {
		res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return struct{}{}, err
		}
		if res.DeletedCount == 0 {
			return struct{}{}, ErrNotFound
		}
		return struct{}{}, nil
	})
	return err
}

func (m *Mongo) Find(ctx context.Context, q Query) ([]Document, error) {
	return retry(ctx, func() ([]Document, error) {
		opts := options.Find()
		if q.SortField != "" {
			dir := 1
			if q.SortDesc {
				dir = -1
			}
			opts.SetSort(bson.D{{Key: q.SortField, Value: dir}})
		}
		if q.Offset > 0 {
			opts.SetSkip(q.Offset)
		}
		if q.Limit > 0 {
			opts.SetLimit(q.Limit)
		}
		cur, err := m.coll.Find(ctx, mongoFilter(q.Filter), opts)
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)
		var out []Document
		for cur.Next(ctx) {
			var doc Document
			if err := cur.Decode(&doc); err != nil {
				return nil, err
			}
			out = append(out, doc)
		}
		return out, cur.Err()
	})
}

func (m *Mongo) FindOne(ctx context.Context, filter Filter) (Document, error) {
	return retry(ctx, func() (Document, error) {
		var doc Document
		err := m.coll.FindOne(ctx, mongoFilter(filter)).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return doc, nil
	})
}

func (m *Mongo) AddToSet(ctx context.Context, id, field, value string) (bool, error) {
	return retry(ctx, func() (bool, error) {
		res, err := m.coll.UpdateByID(ctx, id, bson.M{"$addToSet": bson.M{field: value}})
		if err != nil {
			return false, err
		}
		if res.MatchedCount == 0 {
			return false, ErrNotFound
		}
		return res.ModifiedCount > 0, nil
	})
}

func (m *Mongo) PullValue(ctx context.Context, id, field, value string) (bool, error) {
	return retry(ctx, func() (bool, error) {
		res, err := m.coll.UpdateByID(ctx, id, bson.M{"$pull": bson.M{field: value}})
		if err != nil {
			return false, err
		}
		if res.MatchedCount == 0 {
			return false, ErrNotFound
		}
		return res.ModifiedCount > 0, nil
	})
}

func (m *Mongo) IncField(ctx context.Context, id, field string, delta int64) error {
	_, err := retry(ctx, func() (struct{}, error) {
		res, err := m.coll.UpdateByID(ctx, id, bson.M{"$inc": bson.M{field: delta}})
		if err != nil {
			return struct{}{}, err
		}
		if res.MatchedCount == 0 {
			return struct{}{}, ErrNotFound
		}
		return struct{}{}, nil
	})
	return err
}

func (m *Mongo) SetFields(ctx context.Context, id string, fields Document) error {
	_, err := retry(ctx, func() (struct{}, error) {
		res, err := m.coll.UpdateByID(ctx, id, bson.M{"$set": fields})
		if err != nil {
			return struct{}{}, err
		}
		if res.MatchedCount == 0 {
			return struct{}{}, ErrNotFound
		}
		return struct{}{}, nil
	})
	return err
}

func mongoFilter(f Filter) bson.M {
	out := bson.M{}
	for k, v := range f {
		if vs, ok := v.([]string); ok {
			out[k] = bson.M{"$in": vs}
			continue
		}
		out[k] = v
	}
	return out
}

// retry runs op with bounded exponential backoff on transient driver
// errors. Not-found and duplicate-key outcomes are terminal control flow,
// never retried.
func retry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = time.Second

	out, err := backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !isTransient(err) {
			return v, backoff.Permanent(classify(err))
		}
		return v, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(maxRetries))
	if err != nil && isTransient(err) {
		err = fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return out, err
}

func isTransient(err error) bool {
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}

func classify(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
