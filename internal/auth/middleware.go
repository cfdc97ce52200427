package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKey{}).(*models.User)
	return u
}

type UserGetter interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Middleware resolves "Authorization: Bearer <token>" to an active user.
type Middleware struct {
	tokens *Tokens
	users  UserGetter
	log    logrus.FieldLogger
}

func NewMiddleware(tokens *Tokens, users UserGetter, log logrus.FieldLogger) *Middleware {
	return &Middleware{tokens: tokens, users: users, log: log}
}

// Required rejects anonymous requests with 401.
func (m *Middleware) Required(next http.Handler) http.Handler {
	return m.handler(next, true)
}

// Optional lets anonymous requests through but still rejects a bad token.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return m.handler(next, false)
}

func (m *Middleware) handler(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if required {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "malformed authorization header")
			return
		}

		id, err := m.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := m.users.GetUser(r.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if err != nil {
			m.log.WithError(err).Error("failed to load token user")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if user.Status != models.UserActive {
			writeError(w, http.StatusForbidden, "user is inactive")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
