package main

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/* ===================== Experience ordering ====================== */

// Fixed ordinal table used only for sort comparison, never stored. Levels
// outside the table rank after every known one.
var experienceRank = map[string]int{
	"Beginner":     1,
	"Intermediate": 2,
	"Expert":       3,
}

const experienceRankUnknown = 999

func experienceOrdinal(level string) int {
	if r, ok := experienceRank[level]; ok {
		return r
	}
	return experienceRankUnknown
}

// sortByExperience reorders profiles by the ordinal table. The sort is
// stable: ties keep the order the store returned them in. Anything other
// than asc/desc leaves the slice untouched.
func sortByExperience(profiles []PartnerProfile, dir string) {
	switch dir {
	case "asc":
		sort.SliceStable(profiles, func(i, j int) bool {
			return experienceOrdinal(profiles[i].ExperienceLevel) < experienceOrdinal(profiles[j].ExperienceLevel)
		})
	case "desc":
		sort.SliceStable(profiles, func(i, j int) bool {
			return experienceOrdinal(profiles[i].ExperienceLevel) > experienceOrdinal(profiles[j].ExperienceLevel)
		})
	}
}

// clampLimit coerces the limit query param the way the teacher of this API
// treats all numeric params: defaults on garbage, hard range on the rest.
func clampLimit(raw string, def, max int64) int64 {
	n := def
	if v := strings.TrimSpace(raw); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			n = parsed
		}
	}
	if n < 0 {
		n = 0
	}
	if n > max {
		n = max
	}
	return n
}

/* ===================== Handlers ====================== */

// GET /api/partners?search=&sort=
func (a *api) handleListPartners(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))

	profiles, err := a.partners.List(r.Context(), search)
	if err != nil {
		writeErr(w, err)
		return
	}
	sortByExperience(profiles, q.Get("sort"))
	if profiles == nil {
		profiles = []PartnerProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// GET /api/partners-top?limit=
func (a *api) handleTopPartners(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r.URL.Query().Get("limit"), 3, 100)
	profiles, err := a.partners.TopRated(r.Context(), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	if profiles == nil {
		profiles = []PartnerProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// GET /api/partners/{id}
func (a *api) handleGetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid partner id")
		return
	}
	profile, err := a.partners.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	// Absent profile is the caller's problem, not a 404 here.
	writeJSON(w, http.StatusOK, profile)
}

// POST /api/partners
func (a *api) handleCreatePartner(w http.ResponseWriter, r *http.Request) {
	var in PartnerProfile
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Subject == "" || in.Email == "" {
		errorJSON(w, http.StatusBadRequest, "missing required fields")
		return
	}
	in.ID = primitive.NilObjectID
	in.PartnerCount = 0
	in.CreatedAt = time.Now().UTC()

	id, err := a.partners.Create(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "insertedId": id})
}

// DELETE /api/partners/{id}
//
// Deleting a profile orphans any connection records that reference it; the
// snapshot fields on those records keep them renderable.
func (a *api) handleDeletePartner(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid partner id")
		return
	}
	n, err := a.partners.Delete(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deletedCount": n})
}
