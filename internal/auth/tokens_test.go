package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initSecrets(t *testing.T, access, refresh, accessExpiry string) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", access)
	t.Setenv("REFRESH_TOKEN_SECRET", refresh)
	t.Setenv("ACCESS_TOKEN_EXPIRY", accessExpiry)
	t.Setenv("REFRESH_TOKEN_EXPIRY", "")
	require.NoError(t, InitTokenSecrets())
}

func TestInitTokenSecrets_MissingSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")

	assert.Error(t, InitTokenSecrets())
}

func TestAccessToken_RoundTrip(t *testing.T) {
	initSecrets(t, "access-secret", "refresh-secret", "15m")

	token, err := GenerateAccessToken(42)
	require.NoError(t, err)

	userID, err := VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestAccessToken_Expired(t *testing.T) {
	initSecrets(t, "access-secret", "refresh-secret", "-1s")

	token, err := GenerateAccessToken(42)
	require.NoError(t, err)

	_, err = VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	initSecrets(t, "right-secret", "refresh-secret", "15m")

	token, err := GenerateAccessToken(42)
	require.NoError(t, err)

	initSecrets(t, "wrong-secret", "refresh-secret", "15m")

	_, err = VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_Malformed(t *testing.T) {
	initSecrets(t, "access-secret", "refresh-secret", "15m")

	_, err := VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken_NotValidAsAccessToken(t *testing.T) {
	initSecrets(t, "access-secret", "refresh-secret", "15m")

	token, err := GenerateRefreshToken(7)
	require.NoError(t, err)

	userID, err := VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	// Signed with a different secret, so the access verifier must reject it.
	_, err = VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken_RotationProducesDistinctTokens(t *testing.T) {
	initSecrets(t, "access-secret", "refresh-secret", "15m")

	first, err := GenerateRefreshToken(7)
	require.NoError(t, err)

	second, err := GenerateRefreshToken(7)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestGenerateTemporaryToken(t *testing.T) {
	unhashed, hashed, expiry, err := GenerateTemporaryToken()
	require.NoError(t, err)

	assert.NotEmpty(t, unhashed)
	assert.NotEqual(t, unhashed, hashed)
	assert.Equal(t, hashed, HashToken(unhashed))
	assert.WithinDuration(t, time.Now().Add(TemporaryTokenExpiry), expiry, time.Minute)

	again, _, _, err := GenerateTemporaryToken()
	require.NoError(t, err)
	assert.NotEqual(t, unhashed, again)
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
}
