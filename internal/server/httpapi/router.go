package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the route table. A zero timeout disables the
// per-request deadline.
func NewRouter(h *Handler, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, common.NewError(common.ErrNotFound, "Not Found"), h.logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(r.Context(), w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), h.logger)
	})

	r.Get("/healthz", h.Health)
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Get("/users", h.ListUsers)
		r.Route("/users/{username}", func(r chi.Router) {
			r.Use(h.RequireOwner)
			r.Get("/", h.GetUser)
			r.Get("/to", h.MessagesTo)
			r.Get("/from", h.MessagesFrom)
		})

		r.Post("/messages", h.SendMessage)
		r.Get("/messages/{id}", h.GetMessage)
		r.Post("/messages/{id}/read", h.MarkRead)
	})

	return r
}
