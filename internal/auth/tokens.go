package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TemporaryTokenExpiry bounds the lifetime of emailed verification and
// password-reset tokens.
const TemporaryTokenExpiry = 20 * time.Minute

var (
	accessSecret  string
	refreshSecret string
	accessTTL     = 15 * time.Minute
	refreshTTL    = 168 * time.Hour
)

func InitTokenSecrets() error {
	accessSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	if accessSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET environment variable is not set")
	}

	refreshSecret = os.Getenv("REFRESH_TOKEN_SECRET")
	if refreshSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET environment variable is not set")
	}

	if v := os.Getenv("ACCESS_TOKEN_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ACCESS_TOKEN_EXPIRY: %w", err)
		}
		accessTTL = d
	}

	if v := os.Getenv("REFRESH_TOKEN_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REFRESH_TOKEN_EXPIRY: %w", err)
		}
		refreshTTL = d
	}

	return nil
}

func AccessTokenTTL() time.Duration {
	return accessTTL
}

func RefreshTokenTTL() time.Duration {
	return refreshTTL
}

func GenerateAccessToken(userID uint) (string, error) {
	return generateJWT(userID, accessSecret, accessTTL)
}

func GenerateRefreshToken(userID uint) (string, error) {
	return generateJWT(userID, refreshSecret, refreshTTL)
}

// VerifyAccessToken returns the user id carried by a valid access token.
// Verification is stateless: signature and expiry only.
func VerifyAccessToken(tokenString string) (uint, error) {
	return verifyJWT(tokenString, accessSecret)
}

// VerifyRefreshToken checks signature and expiry. Callers must additionally
// compare the token against the value stored on the user record before
// accepting it.
func VerifyRefreshToken(tokenString string) (uint, error) {
	return verifyJWT(tokenString, refreshSecret)
}

func generateJWT(userID uint, secret string, ttl time.Duration) (string, error) {
	// The jti claim keeps back-to-back tokens distinct even within the
	// same second, so rotation always invalidates the previous value.
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
		"jti":     uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func verifyJWT(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}

	if !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return uint(userIDFloat), nil
}

// GenerateTemporaryToken mints a single-use action token. The unhashed value
// is emailed to the user; only the hash and expiry are persisted.
func GenerateTemporaryToken() (unhashed string, hashed string, expiry time.Time, err error) {
	buf := make([]byte, 20)

	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, err
	}

	unhashed = hex.EncodeToString(buf)
	hashed = HashToken(unhashed)
	expiry = time.Now().Add(TemporaryTokenExpiry)

	return unhashed, hashed, expiry, nil
}

// HashToken recomputes the stored form of a single-use token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
