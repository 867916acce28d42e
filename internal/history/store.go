// Package history records evaluated inputs and their outcomes.
package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxRecent caps how many entries Recent returns.
const MaxRecent = 100

// Entry is one recorded calculation. Exactly one of Sum or Error is meaningful.
type Entry struct {
	Input     string    `bson:"input" json:"input"`
	Sum       float64   `bson:"sum" json:"sum"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	Negatives []float64 `bson:"negatives,omitempty" json:"negatives,omitempty"`
	RequestID string    `bson:"request_id,omitempty" json:"request_id,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Store persists calculation history.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Ping(ctx context.Context) error
}

// Nop discards everything. Used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error          { return nil }
func (Nop) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }
func (Nop) Ping(context.Context) error                   { return nil }

// MongoStore keeps history in the "calculations" collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore sets up the collection and its created_at index.
func NewMongoStore(ctx context.Context, client *mongo.Client, dbName string) (*MongoStore, error) {
	coll := client.Database(dbName).Collection("calculations")
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create history index: %w", err)
	}
	return &MongoStore{coll: coll}, nil
}

func (s *MongoStore) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first. limit is clamped to [1, MaxRecent].
func (s *MongoStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	limit = ClampLimit(limit)
	cur, err := s.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find history: %w", err)
	}
	out := make([]Entry, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// ClampLimit bounds a requested page size.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return 20
	case n > MaxRecent:
		return MaxRecent
	}
	return n
}
