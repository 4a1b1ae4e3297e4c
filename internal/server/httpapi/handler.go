// Package httpapi is the JSON HTTP interface of messagely: a chi router,
// authentication and ownership middleware, typed requests and a single
// error translator.
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/notify"
	"github.com/dmitrijs2005/messagely/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// UserService is the part of services.UserService used by the handlers.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Get(ctx context.Context, username string) (*models.UserDetail, error)
	List(ctx context.Context) ([]models.PublicUser, error)
	MessagesFrom(ctx context.Context, username string) ([]models.SentMessage, error)
	MessagesTo(ctx context.Context, username string) ([]models.ReceivedMessage, error)
	Exists(ctx context.Context, username string) (bool, error)
	ParseToken(token string) (string, error)
}

// MessageService is the part of services.MessageService used by the handlers.
type MessageService interface {
	Send(ctx context.Context, from, to, body string) (*models.Message, error)
	Get(ctx context.Context, viewer string, id int64) (*models.MessageDetail, error)
	MarkRead(ctx context.Context, viewer string, id int64) (*models.Message, error)
}

// Pinger checks the database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves every route.
type Handler struct {
	users    UserService
	messages MessageService
	db       Pinger
	stats    func() notify.Stats
	logger   logging.Logger
}

// NewHandler wires the services. db and stats are only used by /healthz
// and may be nil.
func NewHandler(us UserService, ms MessageService, db Pinger, stats func() notify.Stats, logger logging.Logger) *Handler {
	return &Handler{
		users:    us,
		messages: ms,
		db:       db,
		stats:    stats,
		logger:   logger.With("module", "http"),
	}
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type registerResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeValid(r, &req, "Username and password required"); err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}

	token, err := h.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}

	h.logger.Info(ctx, "user logged in", "username", req.Username)
	respondWithJSON(ctx, w, http.StatusOK, loginResponse{Message: "Logged in!", Token: token}, h.logger)
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeValid(r, &req, "All fields are required"); err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}

	user, token, err := h.users.Register(ctx, services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}

	h.logger.Info(ctx, "user registered", "username", user.Username)
	respondWithJSON(ctx, w, http.StatusCreated, registerResponse{User: user, Token: token}, h.logger)
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	respondWithJSON(r.Context(), w, http.StatusOK, map[string]any{"users": users}, h.logger)
}

// GetUser handles GET /users/{username}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	respondWithJSON(r.Context(), w, http.StatusOK, map[string]any{"user": user}, h.logger)
}

// MessagesTo handles GET /users/{username}/to.
func (h *Handler) MessagesTo(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.users.MessagesTo(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	respondWithJSON(r.Context(), w, http.StatusOK, map[string]any{"messages": msgs}, h.logger)
}

// MessagesFrom handles GET /users/{username}/from.
func (h *Handler) MessagesFrom(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.users.MessagesFrom(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	respondWithJSON(r.Context(), w, http.StatusOK, map[string]any{"messages": msgs}, h.logger)
}

// GetMessage handles GET /messages/{id}.
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := Identity(ctx)

	id, err := messageID(r)
	if err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}

	msg, err := h.messages.Get(ctx, viewer, id)
	if err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}
	respondWithJSON(ctx, w, http.StatusOK, map[string]any{"message": msg}, h.logger)
}

// SendMessage handles POST /messages.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, _ := Identity(ctx)

	var req sendMessageRequest
	if err := decodeValid(r, &req, "All fields are required"); err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}

	msg, err := h.messages.Send(ctx, from, req.ToUsername, req.Body)
	if err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}

	h.logger.Info(ctx, "message sent", "id", msg.ID, "from", from, "to", msg.ToUsername)
	respondWithJSON(ctx, w, http.StatusCreated, map[string]any{"message": msg}, h.logger)
}

// MarkRead handles POST /messages/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := Identity(ctx)

	id, err := messageID(r)
	if err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}

	msg, err := h.messages.MarkRead(ctx, viewer, id)
	if err != nil {
		writeError(ctx, w, err, h.logger)
		return
	}
	respondWithJSON(ctx, w, http.StatusOK, map[string]any{"message": msg}, h.logger)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body := map[string]any{"status": "ok"}
	code := http.StatusOK

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn(ctx, "health check: database unavailable", "error", err)
			body["status"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	if h.stats != nil {
		body["notifications"] = h.stats()
	}
	respondWithJSON(ctx, w, code, body, h.logger)
}

func messageID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Errorf(common.ErrNotFound, "No such message: %s", raw)
	}
	return id, nil
}
