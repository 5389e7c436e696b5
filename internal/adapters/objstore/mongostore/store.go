package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// object is the document shape; the object key is the document _id.
type object struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// Store keeps one document per object in a single collection.
type Store struct {
	collection *mongo.Collection
}

func New(collection *mongo.Collection) *Store {
	return &Store{collection: collection}
}

// Connect opens a client and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI cannot be empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

var _ portsrepo.ObjectStore = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var obj object
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&obj)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: object %s", apperrors.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s: %w", key, err)
	}
	return obj.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		object{Key: key, Value: data},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list %s: %w", prefix, err)
	}
	defer cursor.Close(ctx)

	keys := make([]string, 0)
	for cursor.Next(ctx) {
		var obj object
		if err := cursor.Decode(&obj); err != nil {
			return nil, fmt.Errorf("mongo decode under %s: %w", prefix, err)
		}
		keys = append(keys, obj.Key)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor under %s: %w", prefix, err)
	}
	return keys, nil
}
