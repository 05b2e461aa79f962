package middleware

import (
	"sync"
	"testing"

	"todolist-web/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var setupOnce sync.Once

func setupTest() {
	setupOnce.Do(func() {
		logging.InitLogger(&logging.LogConfig{
			Enabled:    false,
			Level:      "info",
			JSONFormat: false,
		})
		gin.SetMode(gin.TestMode)
	})
}

func TestGetEnvBool(t *testing.T) {
	setupTest()
	tests := []struct {
		name         string
		defaultValue bool
		envValue     string
		expected     bool
	}{
		{name: "true", defaultValue: false, envValue: "true", expected: true},
		{name: "false", defaultValue: true, envValue: "false", expected: false},
		{name: "one", defaultValue: false, envValue: "1", expected: true},
		{name: "zero", defaultValue: true, envValue: "0", expected: false},
		{name: "invalid falls back", defaultValue: true, envValue: "invalid", expected: true},
		{name: "empty falls back", defaultValue: false, envValue: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.expected, getEnvBool("TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	setupTest()
	tests := []struct {
		name     string
		envValue string
		expected int
	}{
		{name: "valid", envValue: "42", expected: 42},
		{name: "invalid falls back", envValue: "not_a_number", expected: 100},
		{name: "empty falls back", envValue: "", expected: 100},
		{name: "zero", envValue: "0", expected: 0},
		{name: "negative", envValue: "-42", expected: -42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)
			assert.Equal(t, tt.expected, getEnvInt("TEST_INT", 100))
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	assert.Equal(t, "value", getEnv("TEST_STRING", "default"))

	t.Setenv("TEST_STRING", "")
	assert.Equal(t, "default", getEnv("TEST_STRING", "default"))
}

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: []string{}},
		{name: "single", input: "GET", expected: []string{"GET"}},
		{name: "trims spaces", input: " GET , POST ", expected: []string{"GET", "POST"}},
		{name: "drops blanks", input: "GET,,POST,", expected: []string{"GET", "POST"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseCommaSeparated(tt.input))
		})
	}
}
