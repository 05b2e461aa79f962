package session

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token has expired")
)

// Config holds session cookie and lifetime configuration
type Config struct {
	SecretKey       string
	TTL             time.Duration
	CookieName      string
	CookieSecure    bool
	Issuer          string
	CleanupInterval time.Duration
}

// NewConfigFromEnv creates a session config from environment variables
func NewConfigFromEnv() *Config {
	return &Config{
		SecretKey:       getEnv("SESSION_SECRET", defaultSecret),
		TTL:             time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60*24)) * time.Minute,
		CookieName:      getEnv("SESSION_COOKIE_NAME", "todolist_session"),
		CookieSecure:    getEnvBool("SESSION_COOKIE_SECURE", false),
		Issuer:          getEnv("SESSION_ISSUER", "todolist-web"),
		CleanupInterval: time.Duration(getEnvInt("SESSION_CLEANUP_MINUTES", 15)) * time.Minute,
	}
}

// UsesDefaultSecret reports whether the development secret is in use
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == defaultSecret
}

// defaultSecret is for local development only
const defaultSecret = "INSECURE_DEFAULT_SESSION_SECRET_CHANGE_ME"

// Claims carries the session ID in the standard jti claim
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs a token binding the cookie to a session ID
func IssueToken(sessionID string, config *Config) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns the session ID it carries
func ParseToken(tokenString string, config *Config) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.SecretKey), nil
	}, jwt.WithIssuer(config.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
