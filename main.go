package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// api owns the storage handles for the lifetime of the process. The fields
// stay nil when the startup connection failed; requireStore then turns every
// /api request into a 503 instead of a hang or a crash.
type api struct {
	partners    partnerStore
	connections connectionStore
	users       userStore
	txn         txnRunner
	ping        func(context.Context) error
}

func (a *api) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.partners == nil {
			errorJSON(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *api) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.ping == nil {
		errorJSON(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.ping(ctx); err != nil {
		errorJSON(w, http.StatusServiceUnavailable, "storage unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

func (a *api) routes(corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// allow comma-separated list of origins
	var origins []string
	for _, p := range strings.Split(corsOrigin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	// Finish bare OPTIONS quickly
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	// Liveness answers while the process is up; readiness reflects storage.
	ok := func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
	r.Get("/", ok)
	r.Get("/health", ok)
	r.Get("/ready", a.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(a.requireStore)

		r.Get("/partners", a.handleListPartners)
		r.Get("/partners-top", a.handleTopPartners)
		r.Get("/partners/{id}", a.handleGetPartner)
		r.Post("/partners", a.handleCreatePartner)
		r.Delete("/partners/{id}", a.handleDeletePartner)

		r.Post("/connections", a.handleSendRequest)
		r.Get("/connections", a.handleListConnections)
		r.Patch("/connections/{id}", a.handleUpdateConnection)
		r.Delete("/connections/{id}", a.handleDeleteConnection)

		r.Get("/users", a.handleListUsers)
		r.Get("/users/{id}", a.handleGetUser)
		r.Post("/users", a.handleCreateUser)
		r.Put("/users/{id}", a.handleUpdateUser)
		r.Delete("/users/{id}", a.handleDeleteUser)
	})

	return r
}

func main() {
	loadDotenv()
	cfg := loadConfig()

	a := &api{}
	st, err := openStore(cfg)
	if err != nil {
		// Keep serving: /api answers 503 until the operator fixes storage.
		log.Printf("[db] connect failed, starting degraded: %v", err)
	} else {
		a.partners = st.Partners()
		a.connections = st.Connections()
		a.users = st.Users()
		a.txn = st
		a.ping = st.Ping

		if cfg.DemoMode {
			if err := seedDemoPartners(context.Background(), a.partners); err != nil {
				log.Printf("[seed] demo partners: %v", err)
			}
		}
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.routes(cfg.CORSOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Println("API listening on", addr, "CORS_ORIGIN:", cfg.CORSOrigin)
	log.Fatal(srv.ListenAndServe())
}
