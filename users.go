package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users are plain pass-through documents: the API checks name and email and
// stores whatever else the client sends.

func fieldString(doc bson.M, key string) string {
	s, _ := doc[key].(string)
	return strings.TrimSpace(s)
}

// POST /api/users
func (a *api) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in bson.M
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if fieldString(in, "name") == "" || fieldString(in, "email") == "" {
		errorJSON(w, http.StatusBadRequest, "missing required fields")
		return
	}
	delete(in, "_id")
	delete(in, "id")

	id, err := a.users.Create(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "insertedId": id})
}

// GET /api/users
func (a *api) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if users == nil {
		users = []bson.M{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GET /api/users/{id}
func (a *api) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid user id")
		return
	}
	doc, err := a.users.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PUT /api/users/{id}
func (a *api) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var in bson.M
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	delete(in, "_id")
	delete(in, "id")
	if len(in) == 0 {
		errorJSON(w, http.StatusBadRequest, "no updatable fields")
		return
	}

	n, err := a.users.UpdateFields(r.Context(), id, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matchedCount": n})
}

// DELETE /api/users/{id}
func (a *api) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid user id")
		return
	}
	n, err := a.users.Delete(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deletedCount": n})
}
