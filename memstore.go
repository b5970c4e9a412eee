package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore keeps the three collections in ordered slices behind one mutex.
// Insertion order stands in for the backing store's natural order, which the
// list surfaces promise to preserve.
type memStore struct {
	mu          sync.Mutex
	partners    []PartnerProfile
	connections []ConnectionRequest
	users       []bson.M
}

func newMemStore() *memStore { return &memStore{} }

func (s *memStore) Ping(ctx context.Context) error { return nil }

func (s *memStore) RunTxn(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

/* ---------- partners ---------- */

type memPartners struct{ s *memStore }

func (s *memStore) Partners() partnerStore { return memPartners{s} }

func (p memPartners) Create(ctx context.Context, profile PartnerProfile) (primitive.ObjectID, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	p.s.partners = append(p.s.partners, profile)
	return profile.ID, nil
}

func (p memPartners) List(ctx context.Context, search string) ([]PartnerProfile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	needle := strings.ToLower(search)
	out := make([]PartnerProfile, 0, len(p.s.partners))
	for _, prof := range p.s.partners {
		if needle == "" || strings.Contains(strings.ToLower(prof.Subject), needle) {
			out = append(out, prof)
		}
	}
	return out, nil
}

func (p memPartners) TopRated(ctx context.Context, limit int64) ([]PartnerProfile, error) {
	p.s.mu.Lock()
	out := append([]PartnerProfile(nil), p.s.partners...)
	p.s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p memPartners) GetByID(ctx context.Context, id primitive.ObjectID) (*PartnerProfile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.partners {
		if p.s.partners[i].ID == id {
			prof := p.s.partners[i]
			return &prof, nil
		}
	}
	return nil, nil
}

func (p memPartners) IncrementPartnerCount(ctx context.Context, id primitive.ObjectID) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.partners {
		if p.s.partners[i].ID == id {
			p.s.partners[i].PartnerCount++
			return nil
		}
	}
	return fmt.Errorf("increment partnerCount: no partner %s", id.Hex())
}

func (p memPartners) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.partners {
		if p.s.partners[i].ID == id {
			p.s.partners = append(p.s.partners[:i], p.s.partners[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

/* ---------- connections ---------- */

type memConnections struct{ s *memStore }

func (s *memStore) Connections() connectionStore { return memConnections{s} }

func (c memConnections) FindDuplicate(ctx context.Context, partnerID primitive.ObjectID, email string) (*ConnectionRequest, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for i := range c.s.connections {
		if c.s.connections[i].PartnerID == partnerID && c.s.connections[i].RequesterEmail == email {
			req := c.s.connections[i]
			return &req, nil
		}
	}
	return nil, nil
}

func (c memConnections) Create(ctx context.Context, req ConnectionRequest) (primitive.ObjectID, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	// Same guarantee the unique compound index gives the Mongo store.
	for i := range c.s.connections {
		if c.s.connections[i].PartnerID == req.PartnerID && c.s.connections[i].RequesterEmail == req.RequesterEmail {
			return primitive.NilObjectID, errDuplicateKey
		}
	}
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	c.s.connections = append(c.s.connections, req)
	return req.ID, nil
}

func (c memConnections) ListByRequester(ctx context.Context, email string) ([]ConnectionRequest, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := make([]ConnectionRequest, 0)
	for _, req := range c.s.connections {
		if req.RequesterEmail == email {
			out = append(out, req)
		}
	}
	return out, nil
}

func (c memConnections) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for i := range c.s.connections {
		if c.s.connections[i].ID == id {
			// PATCH whitelists fields before this point; status is the only
			// client-settable one today.
			if v, ok := fields["status"].(string); ok {
				c.s.connections[i].Status = v
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (c memConnections) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for i := range c.s.connections {
		if c.s.connections[i].ID == id {
			c.s.connections = append(c.s.connections[:i], c.s.connections[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

/* ---------- users ---------- */

type memUsers struct{ s *memStore }

func (s *memStore) Users() userStore { return memUsers{s} }

func (u memUsers) Create(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	id := primitive.NewObjectID()
	cp := bson.M{"_id": id}
	for k, v := range doc {
		cp[k] = v
	}
	u.s.users = append(u.s.users, cp)
	return id, nil
}

func (u memUsers) List(ctx context.Context) ([]bson.M, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return append([]bson.M(nil), u.s.users...), nil
}

func (u memUsers) GetByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, doc := range u.s.users {
		if doc["_id"] == id {
			return doc, nil
		}
	}
	return nil, nil
}

func (u memUsers) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, doc := range u.s.users {
		if doc["_id"] == id {
			for k, v := range fields {
				doc[k] = v
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (u memUsers) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for i, doc := range u.s.users {
		if doc["_id"] == id {
			u.s.users = append(u.s.users[:i], u.s.users[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}
