package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/care-portal/internal/model"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "care-portal", time.Hour)
	id := Identity{SubjectID: uuid.New(), Role: model.RoleClinician}

	token, expiresAt, err := m.Generate(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "care-portal", time.Hour)
	id := Identity{SubjectID: uuid.New(), Role: model.RolePatient}

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("secret", "care-portal", -time.Minute)
		token, _, err := expired.Generate(id)
		require.NoError(t, err)
		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("forged signature", func(t *testing.T) {
		token, _, err := NewJWTManager("other", "care-portal", time.Hour).Generate(id)
		require.NoError(t, err)
		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, _, err := NewJWTManager("secret", "elsewhere", time.Hour).Generate(id)
		require.NoError(t, err)
		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, _, err := m.Generate(Identity{SubjectID: uuid.New(), Role: "superuser"})
		require.NoError(t, err)
		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("subject not a uuid", func(t *testing.T) {
		claims := portalClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "care-portal",
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: "patient",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := portalClaims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "care-portal", Subject: uuid.NewString()},
			Role:             "patient",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	id := Identity{SubjectID: uuid.New(), Role: model.RoleAdmin}
	got, ok := FromContext(WithIdentity(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
