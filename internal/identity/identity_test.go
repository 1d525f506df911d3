package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_DefaultsToGuest(t *testing.T) {
	assert.Equal(t, models.GuestUID, FromContext(context.Background()))
	assert.Equal(t, "u-42", FromContext(With(context.Background(), "u-42")))
	assert.Equal(t, models.GuestUID, FromContext(With(context.Background(), "")))
	assert.True(t, IsGuest(models.GuestUID))
	assert.False(t, IsGuest("u-42"))
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Sign(Claims{UID: "u-42", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	require.NoError(t, err)

	uid, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", uid)
}

func TestJWTVerifier_SubjectFallback(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "firebase-uid"}})
	require.NoError(t, err)

	uid, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid", uid)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	other, err := NewJWTVerifier("other-secret").Sign(Claims{UID: "u-1"})
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), other)
	assert.True(t, errors.Is(err, ErrInvalidToken), "wrong secret")

	expired, err := v.Sign(Claims{UID: "u-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), expired)
	assert.True(t, errors.Is(err, ErrInvalidToken), "expired")

	noUID, err := v.Sign(Claims{})
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), noUID)
	assert.True(t, errors.Is(err, ErrInvalidToken), "missing uid")

	_, err = v.Verify(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
