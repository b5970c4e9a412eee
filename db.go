package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// openStore connects to MongoDB and bootstraps the indexes the app relies on.
// Fast fail on an unreachable server so startup problems are visible
// immediately; the caller decides whether to run degraded.
func openStore(cfg Config) (*mongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := client.Database(cfg.DBName)
	st := &mongoStore{
		client:      client,
		users:       db.Collection("users"),
		partners:    db.Collection("partners"),
		connections: db.Collection("connections"),
		txnEnabled:  cfg.TxnEnabled,
	}
	if err := st.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}

	log.Println("[db] connected", cfg.DBName)
	return st, nil
}

func (s *mongoStore) ensureIndexes(ctx context.Context) error {
	// One request per (partner, requester): a racing insert hits this index
	// instead of slipping past the application-level duplicate check.
	_, err := s.connections.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "partnerId", Value: 1}, {Key: "requesterEmail", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.partners.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "rating", Value: -1}},
	})
	return err
}
