package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/config"
	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestTokens(t *testing.T) {
	tokens := NewTokens(config.SecurityConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	user := &models.User{ID: uuid.New(), Role: models.RolePassenger}

	raw, err := tokens.Issue(user)
	require.NoError(t, err)

	id, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokens(config.SecurityConfig{JWTSecret: "other"})
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokens(config.SecurityConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func TestMiddleware(t *testing.T) {
	log, _ := test.NewNullLogger()
	tokens := NewTokens(config.SecurityConfig{JWTSecret: "test-secret"})

	active := &models.User{ID: uuid.New(), Username: "ada", Status: models.UserActive, Role: models.RolePassenger}
	inactive := &models.User{ID: uuid.New(), Username: "bob", Status: models.UserInactive, Role: models.RolePassenger}
	missing := &models.User{ID: uuid.New()}
	m := NewMiddleware(tokens, fakeUsers{active.ID: active, inactive.ID: inactive}, log)

	bearer := func(u *models.User) string {
		raw, err := tokens.Issue(u)
		require.NoError(t, err)
		return "Bearer " + raw
	}

	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		required bool
		header   string
		status   int
		user     *models.User
	}{
		{"required anonymous", true, "", http.StatusUnauthorized, nil},
		{"optional anonymous", false, "", http.StatusNoContent, nil},
		{"required active", true, bearer(active), http.StatusNoContent, active},
		{"optional active", false, bearer(active), http.StatusNoContent, active},
		{"inactive", true, bearer(inactive), http.StatusForbidden, nil},
		{"unknown user", true, bearer(missing), http.StatusUnauthorized, nil},
		{"bad token on optional", false, "Bearer nope", http.StatusUnauthorized, nil},
		{"wrong scheme", true, "Basic abc", http.StatusUnauthorized, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			h := m.Optional(next)
			if tt.required {
				h = m.Required(next)
			}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.user, seen)
		})
	}
}
