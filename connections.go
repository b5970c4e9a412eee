package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/* ===================== Send-request orchestration ====================== */

type sendRequestInput struct {
	PartnerID      string `json:"partnerId"`
	RequesterEmail string `json:"requesterEmail"`
}

// sendRequest implements the connection workflow: validate, reject
// duplicates, check the partner exists, bump its popularity counter, then
// write the denormalized request record. The counter increment and the
// insert run inside one transaction when the store supports it; otherwise
// they are sequential and an insert failure leaves the counter ahead by one
// (logged, not silently repaired).
func (a *api) sendRequest(ctx context.Context, in sendRequestInput) (*ConnectionRequest, error) {
	email := strings.TrimSpace(in.RequesterEmail)
	rawID := strings.TrimSpace(in.PartnerID)
	if email == "" || rawID == "" {
		return nil, errBadRequest("missing required fields")
	}
	partnerID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, errBadRequest("invalid partner id")
	}

	// Pre-check for the fast 409 path; the unique index backs it up under
	// racing requests.
	dup, err := a.connections.FindDuplicate(ctx, partnerID, email)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, errConflict("duplicate request")
	}

	partner, err := a.partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, errNotFound("partner not found")
	}

	req := ConnectionRequest{
		PartnerID:      partnerID,
		RequesterEmail: email,
		PartnerName:    partner.Name,
		PartnerImage:   partner.ProfileImage,
		Subject:        partner.Subject,
		StudyMode:      partner.StudyMode,
		Status:         statusPending,
		CreatedAt:      time.Now().UTC(),
	}

	err = a.txn.RunTxn(ctx, func(ctx context.Context) error {
		if err := a.partners.IncrementPartnerCount(ctx, partnerID); err != nil {
			return err
		}
		id, err := a.connections.Create(ctx, req)
		if err != nil {
			log.Printf("[connections] insert failed after increment for partner %s: %v", partnerID.Hex(), err)
			return err
		}
		req.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

/* ===================== Handlers ====================== */

// POST /api/connections
func (a *api) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	var in sendRequestInput
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req, err := a.sendRequest(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged": true,
		"insertedId":   req.ID,
		"request":      req,
	})
}

// GET /api/connections?email=
func (a *api) handleListConnections(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		errorJSON(w, http.StatusBadRequest, "missing email")
		return
	}
	reqs, err := a.connections.ListByRequester(r.Context(), email)
	if err != nil {
		writeErr(w, err)
		return
	}
	if reqs == nil {
		reqs = []ConnectionRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// Fields a client may PATCH on a connection. Everything else on the record
// is orchestrator-owned.
var connectionPatchable = map[string]bool{"status": true}

// PATCH /api/connections/{id}
func (a *api) handleUpdateConnection(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid connection id")
		return
	}
	var in map[string]any
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	fields := bson.M{}
	for k, v := range in {
		if !connectionPatchable[k] {
			errorJSON(w, http.StatusBadRequest, "field not updatable: "+k)
			return
		}
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			errorJSON(w, http.StatusBadRequest, "invalid value for "+k)
			return
		}
		fields[k] = s
	}
	if len(fields) == 0 {
		errorJSON(w, http.StatusBadRequest, "no updatable fields")
		return
	}

	n, err := a.connections.UpdateFields(r.Context(), id, fields)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matchedCount": n})
}

// DELETE /api/connections/{id}
func (a *api) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid connection id")
		return
	}
	n, err := a.connections.Delete(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deletedCount": n})
}
