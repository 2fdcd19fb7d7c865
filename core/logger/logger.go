package logger

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide zap logger from configuration. The console
// encoding is meant for local runs; deployments log structured JSON.
func New(cfg *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	if cfg.Format == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	}
	if level == zapcore.DebugLevel {
		config.Development = true
	}

	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}

// WithRayID returns a logger carrying the ray_id field from the Fiber
// context, when the rayid middleware has set one.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if rid, ok := c.Locals("ray_id").(string); ok && rid != "" {
		return l.With(zap.String("ray_id", rid))
	}
	return l
}
