package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend stores one document per key: {_id, data, updated_at}.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// stateDocument is the stored document shape.
type stateDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongo connects to MongoDB at uri and uses database.collection.
func NewMongo(ctx context.Context, uri, database, collection string) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoBackend{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Get loads the document for key.
func (b *MongoBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc stateDocument
	err := retry(ctx, func() error {
		return classifyMongo(b.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc))
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Data, true, nil
}

// Set upserts the document for key.
func (b *MongoBackend) Set(ctx context.Context, key string, data []byte) error {
	update := bson.M{"$set": bson.M{"data": data, "updated_at": time.Now().UTC()}}
	return retry(ctx, func() error {
		_, err := b.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
		return classifyMongo(err)
	})
}

// Delete removes the document for key.
func (b *MongoBackend) Delete(ctx context.Context, key string) error {
	return retry(ctx, func() error {
		_, err := b.coll.DeleteOne(ctx, bson.M{"_id": key})
		return classifyMongo(err)
	})
}

// Close disconnects the client.
func (b *MongoBackend) Close() error {
	return b.client.Disconnect(context.Background())
}

// Driver returns "mongo".
func (b *MongoBackend) Driver() string { return "mongo" }

func classifyMongo(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

// Ensure MongoBackend implements Backend.
var _ Backend = (*MongoBackend)(nil)
