package main

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// The store interfaces are the app's view of the document database. The
// Mongo implementation below is the real one; memstore.go backs the tests.

type partnerStore interface {
	Create(ctx context.Context, p PartnerProfile) (primitive.ObjectID, error)
	// List returns profiles in store order, filtered to subjects containing
	// search (case-insensitive) when search is non-empty.
	List(ctx context.Context, search string) ([]PartnerProfile, error)
	TopRated(ctx context.Context, limit int64) ([]PartnerProfile, error)
	// GetByID returns (nil, nil) when no profile matches; not-found policy
	// belongs to the caller.
	GetByID(ctx context.Context, id primitive.ObjectID) (*PartnerProfile, error)
	// IncrementPartnerCount adds 1 to partnerCount server-side. Never
	// read-modify-write: concurrent requests must not lose updates.
	IncrementPartnerCount(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type connectionStore interface {
	FindDuplicate(ctx context.Context, partnerID primitive.ObjectID, email string) (*ConnectionRequest, error)
	// Create returns errDuplicateKey when the unique (partnerId,
	// requesterEmail) index rejects the insert.
	Create(ctx context.Context, c ConnectionRequest) (primitive.ObjectID, error)
	ListByRequester(ctx context.Context, email string) ([]ConnectionRequest, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type userStore interface {
	Create(ctx context.Context, doc bson.M) (primitive.ObjectID, error)
	List(ctx context.Context) ([]bson.M, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// txnRunner wraps a function in a multi-document transaction when the
// deployment supports one, and runs it plain otherwise.
type txnRunner interface {
	RunTxn(ctx context.Context, fn func(context.Context) error) error
}

/* ===================== Mongo implementation ====================== */

type mongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	partners    *mongo.Collection
	connections *mongo.Collection
	txnEnabled  bool
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *mongoStore) RunTxn(ctx context.Context, fn func(context.Context) error) error {
	if !s.txnEnabled {
		return fn(ctx)
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

/* ---------- partners ---------- */

type mongoPartners struct{ s *mongoStore }

func (s *mongoStore) Partners() partnerStore { return mongoPartners{s} }

func (p mongoPartners) Create(ctx context.Context, profile PartnerProfile) (primitive.ObjectID, error) {
	res, err := p.s.partners.InsertOne(ctx, profile)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert partner: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (p mongoPartners) List(ctx context.Context, search string) ([]PartnerProfile, error) {
	filter := bson.M{}
	if search != "" {
		filter["subject"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}
	cur, err := p.s.partners.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	var out []PartnerProfile
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	return out, nil
}

func (p mongoPartners) TopRated(ctx context.Context, limit int64) ([]PartnerProfile, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(limit)
	cur, err := p.s.partners.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("top partners: %w", err)
	}
	var out []PartnerProfile
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("top partners: %w", err)
	}
	return out, nil
}

func (p mongoPartners) GetByID(ctx context.Context, id primitive.ObjectID) (*PartnerProfile, error) {
	var profile PartnerProfile
	err := p.s.partners.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return &profile, nil
}

func (p mongoPartners) IncrementPartnerCount(ctx context.Context, id primitive.ObjectID) error {
	res, err := p.s.partners.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"partnerCount": 1}})
	if err != nil {
		return fmt.Errorf("increment partnerCount: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("increment partnerCount: no partner %s", id.Hex())
	}
	return nil
}

func (p mongoPartners) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := p.s.partners.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete partner: %w", err)
	}
	return res.DeletedCount, nil
}

/* ---------- connections ---------- */

// mongoConnections gives the connection methods their own receiver so the
// method sets of the two collections don't collide on one struct.
type mongoConnections struct{ s *mongoStore }

func (s *mongoStore) Connections() connectionStore { return mongoConnections{s} }

func (c mongoConnections) FindDuplicate(ctx context.Context, partnerID primitive.ObjectID, email string) (*ConnectionRequest, error) {
	var req ConnectionRequest
	err := c.s.connections.FindOne(ctx, bson.M{"partnerId": partnerID, "requesterEmail": email}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate: %w", err)
	}
	return &req, nil
}

func (c mongoConnections) Create(ctx context.Context, req ConnectionRequest) (primitive.ObjectID, error) {
	res, err := c.s.connections.InsertOne(ctx, req)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, errDuplicateKey
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert connection: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (c mongoConnections) ListByRequester(ctx context.Context, email string) ([]ConnectionRequest, error) {
	cur, err := c.s.connections.Find(ctx, bson.M{"requesterEmail": email})
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	var out []ConnectionRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return out, nil
}

func (c mongoConnections) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	res, err := c.s.connections.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return 0, fmt.Errorf("update connection: %w", err)
	}
	return res.MatchedCount, nil
}

func (c mongoConnections) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := c.s.connections.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete connection: %w", err)
	}
	return res.DeletedCount, nil
}

/* ---------- users ---------- */

type mongoUsers struct{ s *mongoStore }

func (s *mongoStore) Users() userStore { return mongoUsers{s} }

func (u mongoUsers) Create(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	res, err := u.s.users.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (u mongoUsers) List(ctx context.Context) ([]bson.M, error) {
	cur, err := u.s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var out []bson.M
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (u mongoUsers) GetByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	var doc bson.M
	err := u.s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return doc, nil
}

func (u mongoUsers) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	res, err := u.s.users.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return 0, fmt.Errorf("update user: %w", err)
	}
	return res.MatchedCount, nil
}

func (u mongoUsers) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := u.s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount, nil
}
