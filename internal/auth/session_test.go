package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSession(t *testing.T) {
	provider := NewJWTSessionProvider("secret", "session_token", time.Hour)
	user := entity.SessionUser{ID: "user-1", Name: "Ada", Email: "ada@example.com"}

	token, err := provider.GenerateToken(user)
	require.NoError(t, err)

	expired, err := NewJWTSessionProvider("secret", "session_token", -time.Hour).GenerateToken(user)
	require.NoError(t, err)

	foreign, err := NewJWTSessionProvider("other", "session_token", time.Hour).GenerateToken(user)
	require.NoError(t, err)

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		want    *entity.SessionUser
	}{
		{
			name:    "bearer header",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			want:    &user,
		},
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session_token", Value: token}) },
			want:    &user,
		},
		{
			name:    "anonymous",
			prepare: func(r *http.Request) {},
		},
		{
			name:    "expired token",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
		},
		{
			name:    "signed with another secret",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) },
		},
		{
			name:    "garbage",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-jwt") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/rpc/healthCheck", nil)
			tt.prepare(r)

			session, err := provider.GetSession(context.Background(), r)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, session)
				return
			}
			require.NotNil(t, session)
			assert.Equal(t, *tt.want, session.User)
			assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
		})
	}
}
