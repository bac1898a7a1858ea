// Package api wires the HTTP surface: routing, middleware order, request
// parsing and the mapping from core errors to status codes.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/salem-notes/notes-backend/internal/api/recovery"
	"github.com/salem-notes/notes-backend/internal/auth"
	"github.com/salem-notes/notes-backend/internal/core/note"
)

// RouterDeps carries everything the router needs; run.go assembles it.
type RouterDeps struct {
	Notes     *note.Service
	Verifier  auth.Verifier
	Resolver  auth.IdentityResolver
	IsHealthy func() bool

	// CORSAllowedOrigin enables the CORS middleware when non-empty.
	CORSAllowedOrigin string
}

// NewRouter builds the route table. Health stays outside authentication;
// every note route sits behind the bearer-token middleware, and access
// logging runs inside it so log lines carry the caller's subject.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()

	router.Use(recovery.Middleware)
	if deps.CORSAllowedOrigin != "" {
		router.Use(CORS(deps.CORSAllowedOrigin))
	}

	if deps.CORSAllowedOrigin != "" {
		// Preflight requests need a matching route for the middleware to run.
		router.PathPrefix("/api/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	}

	healthHandler := NewHealthHandler(deps.IsHealthy)
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	noteHandler := NewNoteHandler(deps.Notes)

	notes := router.PathPrefix("/api/notes").Subrouter()
	notes.Use(auth.Middleware(deps.Verifier, deps.Resolver))
	notes.Use(AccessLog)

	notes.HandleFunc("", noteHandler.CreateNote).Methods("POST")
	notes.HandleFunc("", noteHandler.ListNotes).Methods("GET")
	notes.HandleFunc("/{noteId:[0-9]+}", noteHandler.UpdateNote).Methods("PUT")
	notes.HandleFunc("/{noteId:[0-9]+}", noteHandler.DeleteNote).Methods("DELETE")

	return router
}
