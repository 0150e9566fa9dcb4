package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classicdental/dental-scheduler/internal/models"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret!"))
}

func TestIssueAndParseToken(t *testing.T) {
	user := &models.User{ID: 42, Username: "maria", Role: models.RoleDentist}
	now := time.Now()

	raw, err := IssueToken(user, "secret", time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseToken(raw, "secret")
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, models.RoleDentist, claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	user := &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	t.Run("wrong secret", func(t *testing.T) {
		raw, err := IssueToken(user, "secret", time.Hour, time.Now())
		require.NoError(t, err)
		_, err = ParseToken(raw, "other")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		raw, err := IssueToken(user, "secret", time.Minute, time.Now().Add(-2*time.Hour))
		require.NoError(t, err)
		_, err = ParseToken(raw, "secret")
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("none algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
		})
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ParseToken(raw, "secret")
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		raw, err := IssueToken(&models.User{Username: "ghost"}, "secret", time.Hour, time.Now())
		require.NoError(t, err)
		_, err = ParseToken(raw, "secret")
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken("not.a.token", "secret")
		assert.Error(t, err)
	})
}

func TestResetCode(t *testing.T) {
	code, err := NewResetCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	expires := now.Add(15 * time.Minute)
	hash := HashResetCode(code)

	assert.NoError(t, VerifyResetCode(hash, &expires, code, now))
	assert.NoError(t, VerifyResetCode(hash, &expires, code, expires.Add(-time.Second)))
	assert.ErrorIs(t, VerifyResetCode(hash, &expires, code, expires), ErrResetCodeExpired)
	assert.ErrorIs(t, VerifyResetCode(hash, &expires, "000000x", now), ErrResetCodeInvalid)
	assert.ErrorIs(t, VerifyResetCode("", &expires, code, now), ErrResetCodeInvalid)
	assert.ErrorIs(t, VerifyResetCode(hash, nil, code, now), ErrResetCodeInvalid)

	other := "123456"
	if other == code {
		other = "654321"
	}
	assert.ErrorIs(t, VerifyResetCode(hash, &expires, other, now), ErrResetCodeInvalid)
}
