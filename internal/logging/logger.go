// Package logging owns the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultService tags entries so shared log pipelines can tell services apart
const DefaultService = "todolist-web"

// LogConfig holds configuration for logging
type LogConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	JSONFormat bool
	Service    string // added to every entry as "service" when set

	// Rotating file written alongside stdout
	Enabled    bool
	FilePath   string
	MaxSize    int // megabytes before rotation
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Logger is the global logger. It starts as a plain stdout logger so that
// packages can log before InitLogger runs.
var Logger = logrus.New()

// InitLogger replaces the global logger with one built from config
func InitLogger(config *LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(newFormatter(config.JSONFormat))
	logger.SetOutput(newOutput(config))
	if config.Service != "" {
		logger.AddHook(&fieldHook{key: "service", value: config.Service})
	}

	level, levelErr := logrus.ParseLevel(config.Level)
	if levelErr != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	Logger = logger

	if levelErr != nil {
		logger.Warnf("Unknown LOG_LEVEL %q, falling back to info", config.Level)
	}
	if fileLogging(config) {
		logger.WithFields(logrus.Fields{
			"file":        config.FilePath,
			"max_size_mb": config.MaxSize,
			"max_backups": config.MaxBackups,
			"max_age":     config.MaxAge,
		}).Info("Writing logs to rotating file")
	}
	return logger
}

// NewLogConfigFromEnv creates a LogConfig from LOG_* environment variables
func NewLogConfigFromEnv() *LogConfig {
	return &LogConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		JSONFormat: getEnvBool("LOG_JSON_FORMAT", false),
		Service:    getEnv("LOG_SERVICE_NAME", DefaultService),
		Enabled:    getEnvBool("LOG_FILE_ENABLED", false),
		FilePath:   getEnv("LOG_FILE_PATH", "./logs/todolist-web.log"),
		MaxSize:    getEnvInt("LOG_MAX_SIZE_MB", 100),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		MaxAge:     getEnvInt("LOG_MAX_AGE_DAYS", 28),
		Compress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// ForSession returns an entry tagged with a shortened session ID. Full IDs are
// bearer secrets once signed into a cookie, so they never reach the logs.
func ForSession(sessionID string) *logrus.Entry {
	return Logger.WithField("session", ShortID(sessionID))
}

// ShortID truncates an identifier for logging
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newFormatter(jsonFormat bool) logrus.Formatter {
	if jsonFormat {
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	}
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
}

func fileLogging(config *LogConfig) bool {
	return config.Enabled && config.FilePath != ""
}

func newOutput(config *LogConfig) io.Writer {
	if !fileLogging(config) {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	})
}

// fieldHook sets a constant field on every entry that does not carry it yet
type fieldHook struct {
	key   string
	value string
}

func (h *fieldHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fieldHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data[h.key]; !ok {
		entry.Data[h.key] = h.value
	}
	return nil
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
