package mongosrc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
)

const defaultPageSize = 500

// Connect opens a MongoDB client and checks it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("database connection URL is empty")
	}

	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(10).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	zap.L().Info("Mongo Source: connected")
	return client, nil
}

// Source pages raw documents of one kind out of a collection.
type Source struct {
	coll     *mongo.Collection
	kind     model.Kind
	pageSize int64
}

// NewSource reads kind records from db.collection, pageSize documents per batch.
func NewSource(db *mongo.Database, kind model.Kind, collection string, pageSize int) *Source {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Source{
		coll:     db.Collection(collection),
		kind:     kind,
		pageSize: int64(pageSize),
	}
}

// Each walks the collection in _id order and calls fn with one raw batch per
// page. It stops at the first error from fn and returns the number of
// documents read.
func (s *Source) Each(ctx context.Context, fn func(model.RawBatch) error) (int, error) {
	var (
		after any
		total int
	)
	for {
		opts := options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetLimit(s.pageSize)

		cur, err := s.coll.Find(ctx, pageFilter(after), opts)
		if err != nil {
			return total, fmt.Errorf("find %s: %w", s.coll.Name(), err)
		}
		var docs []bson.M
		if err := cur.All(ctx, &docs); err != nil {
			return total, fmt.Errorf("decode %s: %w", s.coll.Name(), err)
		}
		if len(docs) == 0 {
			return total, nil
		}

		total += len(docs)
		if err := fn(buildBatch(s.kind, s.coll.Name(), docs)); err != nil {
			return total, err
		}

		after = docs[len(docs)-1]["_id"]
		if int64(len(docs)) < s.pageSize {
			return total, nil
		}
	}
}

// pageFilter selects documents after the last _id of the previous page.
func pageFilter(after any) bson.M {
	if after == nil {
		return bson.M{}
	}
	return bson.M{"_id": bson.M{"$gt": after}}
}

func buildBatch(kind model.Kind, collection string, docs []bson.M) model.RawBatch {
	records := make([]any, len(docs))
	for i, doc := range docs {
		records[i] = doc
	}
	return model.RawBatch{
		BatchID: uuid.NewString(),
		Kind:    kind,
		Source:  "mongo:" + collection,
		Records: records,
	}
}
