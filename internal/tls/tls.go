// Package tls serves the site over HTTPS when certificates are configured.
package tls

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"strconv"

	"todolist-web/internal/logging"
)

var (
	ErrDisabled     = errors.New("TLS is not enabled")
	ErrCertNotFound = errors.New("certificate file not found")
	ErrKeyNotFound  = errors.New("key file not found")
)

// Config holds TLS/HTTPS configuration
type Config struct {
	Enabled      bool
	CertFile     string
	KeyFile      string
	Port         string
	HTTPPort     string // plain HTTP listener used for redirects
	RedirectHTTP bool
	MinVersion   uint16
}

// NewConfigFromEnv creates TLS config from environment variables
func NewConfigFromEnv() *Config {
	return &Config{
		Enabled:      getEnvBool("TLS_ENABLED", false),
		CertFile:     getEnv("TLS_CERT_FILE", "./certs/server.crt"),
		KeyFile:      getEnv("TLS_KEY_FILE", "./certs/server.key"),
		Port:         getEnv("TLS_PORT", "8443"),
		HTTPPort:     getEnv("PORT", "8080"),
		RedirectHTTP: getEnvBool("TLS_REDIRECT_HTTP", true),
		MinVersion:   parseTLSVersion(getEnv("TLS_MIN_VERSION", "1.2")),
	}
}

// ServerConfig loads the key pair and returns the *tls.Config for the HTTPS listener
func (c *Config) ServerConfig() (*tls.Config, error) {
	if !c.Enabled {
		return nil, ErrDisabled
	}

	if _, err := os.Stat(c.CertFile); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCertNotFound, c.CertFile)
	}
	if _, err := os.Stat(c.KeyFile); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, c.KeyFile)
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   c.MinVersion,
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
	// TLS 1.3 suites are not configurable
	if c.MinVersion < tls.VersionTLS13 {
		tlsConfig.CipherSuites = []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		}
	}

	logging.Logger.WithFields(map[string]interface{}{
		"cert":        c.CertFile,
		"min_version": versionString(c.MinVersion),
	}).Info("TLS configured")

	return tlsConfig, nil
}

func parseTLSVersion(version string) uint16 {
	switch version {
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		logging.Logger.Warnf("Unsupported TLS version '%s', using TLS 1.2", version)
		return tls.VersionTLS12
	}
}

func versionString(version uint16) string {
	switch version {
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
