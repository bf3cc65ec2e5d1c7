// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type MongoDB struct {
	Client       *mongo.Client
	Users        *mongo.Collection
	Questions    *mongo.Collection
	Tags         *mongo.Collection
	Answers      *mongo.Collection
	Interactions *mongo.Collection
	Bookings     *mongo.Collection

	logger *zap.Logger
}

var (
	connectOnce sync.Once
	sharedDB    *MongoDB
	connectErr  error
)

// Connect returns the process-wide store handle, establishing the connection
// on first call. Concurrent callers coalesce on the same connection attempt;
// later calls reuse the handle regardless of the arguments they pass.
func Connect(ctx context.Context, uri, name string, logger *zap.Logger) (*MongoDB, error) {
	connectOnce.Do(func() {
		sharedDB, connectErr = NewMongoDB(ctx, uri, name, logger)
	})
	return sharedDB, connectErr
}

// NewMongoDB connects to MongoDB and initializes the collection handles.
func NewMongoDB(ctx context.Context, uri, name string, logger *zap.Logger) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", name))

	db := client.Database(name)
	m := &MongoDB{
		Client:       client,
		Users:        db.Collection("users"),
		Questions:    db.Collection("questions"),
		Tags:         db.Collection("tags"),
		Answers:      db.Collection("answers"),
		Interactions: db.Collection("interactions"),
		Bookings:     db.Collection("bookings"),
		logger:       logger,
	}

	if err := m.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

// EnsureIndexes creates the indexes the query paths rely on.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.Tags.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create tag name index: %w", err)
	}

	_, err = m.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "externalId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user externalId index: %w", err)
	}

	_, err = m.Questions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create question author index: %w", err)
	}

	_, err = m.Answers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "question", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create answer question index: %w", err)
	}

	return nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
