package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity returns the authenticated username stored by Authenticate.
func Identity(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(identityKey).(string)
	return u, ok && u != ""
}

func withIdentity(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, identityKey, username)
}

// RequestLogger logs one line per request.
func RequestLogger(logger logging.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// tokenFromRequest looks in the Authorization header first, then the
// _token query parameter, then a _token field of a JSON body. The body is
// restored for the handler.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(common.AuthorizationHeaderName); strings.HasPrefix(h, common.BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
	}

	if t := r.URL.Query().Get(common.TokenFieldName); t != "" {
		return t
	}

	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var holder struct {
		Token string `json:"_token"`
	}
	if json.Unmarshal(body, &holder) != nil {
		return ""
	}
	return holder.Token
}

// Authenticate rejects requests without a valid token for an existing user
// and stores the username in the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		unauthorized := common.NewError(common.ErrUnauthorized, "Unauthorized")

		token := tokenFromRequest(r)
		if token == "" {
			writeError(ctx, w, unauthorized, h.logger)
			return
		}

		username, err := h.users.ParseToken(token)
		if err != nil {
			h.logger.Debug(ctx, "token rejected", "error", err)
			writeError(ctx, w, unauthorized, h.logger)
			return
		}

		exists, err := h.users.Exists(ctx, username)
		if err != nil {
			writeError(ctx, w, err, h.logger)
			return
		}
		if !exists {
			writeError(ctx, w, unauthorized, h.logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(ctx, username)))
	})
}

// RequireOwner lets the request through only when the authenticated user
// is the {username} of the route.
func (h *Handler) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := Identity(r.Context())
		if err := services.EnsureOwner(identity, chi.URLParam(r, "username")); err != nil {
			writeError(r.Context(), w, err, h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
