package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	_, h := newTestAPI(t)

	// missing email
	rec := doJSON(t, h, http.MethodPost, "/api/users", `{"name":"Tanvir"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// free-form fields pass straight through
	rec = doJSON(t, h, http.MethodPost, "/api/users",
		`{"name":"Tanvir","email":"t@x.com","university":"DU","photoURL":"t.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		InsertedID string `json:"insertedId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.InsertedID)

	rec = doJSON(t, h, http.MethodGet, "/api/users/"+created.InsertedID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Tanvir", doc["name"])
	assert.Equal(t, "DU", doc["university"])

	rec = doJSON(t, h, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	// update merges fields; ids are stripped before the merge
	rec = doJSON(t, h, http.MethodPut, "/api/users/"+created.InsertedID,
		`{"university":"BUET","_id":"ffffffffffffffffffffffff"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/users/"+created.InsertedID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "BUET", doc["university"])
	assert.Equal(t, "Tanvir", doc["name"])

	rec = doJSON(t, h, http.MethodDelete, "/api/users/"+created.InsertedID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(1), out.DeletedCount)

	// malformed ids are rejected before any store access
	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		body := ""
		if m == http.MethodPut {
			body = `{"name":"x"}`
		}
		rec = doJSON(t, h, m, "/api/users/abc", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, m)
	}
}

func TestGetAbsentUserIsNull(t *testing.T) {
	_, h := newTestAPI(t)
	rec := doJSON(t, h, http.MethodGet, "/api/users/64b000000000000000000000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}
