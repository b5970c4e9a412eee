package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*api, http.Handler) {
	t.Helper()
	st := newMemStore()
	a := &api{
		partners:    st.Partners(),
		connections: st.Connections(),
		users:       st.Users(),
		txn:         st,
		ping:        st.Ping,
	}
	return a, a.routes("")
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createPartner(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/partners", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		InsertedID string `json:"insertedId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.InsertedID)
	return out.InsertedID
}

func listPartners(t *testing.T, h http.Handler, query string) []PartnerProfile {
	t.Helper()
	rec := doJSON(t, h, http.MethodGet, "/api/partners"+query, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out []PartnerProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestExperienceOrdinal(t *testing.T) {
	assert.Equal(t, 1, experienceOrdinal("Beginner"))
	assert.Equal(t, 2, experienceOrdinal("Intermediate"))
	assert.Equal(t, 3, experienceOrdinal("Expert"))
	assert.Equal(t, experienceRankUnknown, experienceOrdinal("Wizard"))
	assert.Equal(t, experienceRankUnknown, experienceOrdinal(""))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, int64(3), clampLimit("", 3, 100))
	assert.Equal(t, int64(3), clampLimit("abc", 3, 100))
	assert.Equal(t, int64(7), clampLimit("7", 3, 100))
	assert.Equal(t, int64(0), clampLimit("-5", 3, 100))
	assert.Equal(t, int64(0), clampLimit("0", 3, 100))
	assert.Equal(t, int64(100), clampLimit("5000", 3, 100))
}

func TestSortByExperienceStable(t *testing.T) {
	profiles := []PartnerProfile{
		{Name: "a", ExperienceLevel: "Expert"},
		{Name: "b", ExperienceLevel: "Beginner"},
		{Name: "c", ExperienceLevel: "Unknown"},
		{Name: "d", ExperienceLevel: "Intermediate"},
		{Name: "e", ExperienceLevel: "Beginner"},
	}

	asc := append([]PartnerProfile(nil), profiles...)
	sortByExperience(asc, "asc")
	names := func(ps []PartnerProfile) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Name
		}
		return out
	}
	// ties (b, e) keep their original relative order
	assert.Equal(t, []string{"b", "e", "d", "a", "c"}, names(asc))

	desc := append([]PartnerProfile(nil), profiles...)
	sortByExperience(desc, "desc")
	assert.Equal(t, []string{"c", "a", "d", "b", "e"}, names(desc))

	untouched := append([]PartnerProfile(nil), profiles...)
	sortByExperience(untouched, "sideways")
	assert.Equal(t, names(profiles), names(untouched))
}

func TestCreatePartnerValidation(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/partners",
		`{"name":"NoSubject","email":"x@y.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// nothing was stored
	assert.Empty(t, listPartners(t, h, ""))
}

func TestListPartnersSearch(t *testing.T) {
	_, h := newTestAPI(t)
	createPartner(t, h, `{"name":"A","subject":"Mathematics","email":"a@x.com"}`)
	createPartner(t, h, `{"name":"B","subject":"MATH101","email":"b@x.com"}`)
	createPartner(t, h, `{"name":"C","subject":"Physics","email":"c@x.com"}`)

	got := listPartners(t, h, "?search=math")
	require.Len(t, got, 2)
	subjects := []string{got[0].Subject, got[1].Subject}
	assert.Contains(t, subjects, "Mathematics")
	assert.Contains(t, subjects, "MATH101")
}

func TestListPartnersSortByExperience(t *testing.T) {
	_, h := newTestAPI(t)
	createPartner(t, h, `{"name":"ex","subject":"Math","email":"a@x.com","experienceLevel":"Expert"}`)
	createPartner(t, h, `{"name":"be","subject":"Math","email":"b@x.com","experienceLevel":"Beginner"}`)
	createPartner(t, h, `{"name":"in","subject":"Math","email":"c@x.com","experienceLevel":"Intermediate"}`)
	createPartner(t, h, `{"name":"un","subject":"Math","email":"d@x.com","experienceLevel":"Unknown"}`)

	asc := listPartners(t, h, "?sort=asc")
	require.Len(t, asc, 4)
	assert.Equal(t, "be", asc[0].Name)
	assert.Equal(t, "in", asc[1].Name)
	assert.Equal(t, "ex", asc[2].Name)
	assert.Equal(t, "un", asc[3].Name)

	desc := listPartners(t, h, "?sort=desc")
	require.Len(t, desc, 4)
	assert.Equal(t, "un", desc[0].Name)
	assert.Equal(t, "ex", desc[1].Name)
	assert.Equal(t, "in", desc[2].Name)
	assert.Equal(t, "be", desc[3].Name)
}

func TestTopPartners(t *testing.T) {
	_, h := newTestAPI(t)
	createPartner(t, h, `{"name":"five","subject":"Math","email":"a@x.com","rating":5}`)
	createPartner(t, h, `{"name":"three","subject":"Math","email":"b@x.com","rating":3}`)
	createPartner(t, h, `{"name":"four","subject":"Math","email":"c@x.com","rating":4}`)

	rec := doJSON(t, h, http.MethodGet, "/api/partners-top?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []PartnerProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "five", got[0].Name)
	assert.Equal(t, "four", got[1].Name)

	// default limit is 3
	rec = doJSON(t, h, http.MethodGet, "/api/partners-top", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 3)

	// limit=0 is a defined empty result, not an error
	rec = doJSON(t, h, http.MethodGet, "/api/partners-top?limit=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got)
}

func TestGetPartner(t *testing.T) {
	_, h := newTestAPI(t)
	id := createPartner(t, h, `{"name":"A","subject":"Math","email":"a@x.com"}`)

	rec := doJSON(t, h, http.MethodGet, "/api/partners/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got PartnerProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, int64(0), got.PartnerCount)

	// malformed id
	rec = doJSON(t, h, http.MethodGet, "/api/partners/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// well-formed but absent: the catalog answers null, not 404
	rec = doJSON(t, h, http.MethodGet, "/api/partners/64b000000000000000000000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestDeletePartner(t *testing.T) {
	_, h := newTestAPI(t)
	id := createPartner(t, h, `{"name":"A","subject":"Math","email":"a@x.com"}`)

	rec := doJSON(t, h, http.MethodDelete, "/api/partners/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(1), out.DeletedCount)

	assert.Empty(t, listPartners(t, h, ""))
}
