package ports

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig controls the logger's level/format, mirroring
// noah-isme-sma-adp-api/pkg/logger's New(cfg).
type LogConfig struct {
	Production bool
	Level      string
	Format     string // "console" or "json"
}

// NewLogger builds a *zap.Logger from cfg the way
// noah-isme-sma-adp-api/pkg/logger.New constructs one: production vs.
// development base config, optional console encoding, parsed level.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Production {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Format == "console" {
		zapCfg.Encoding = "console"
	} else if cfg.Format != "" {
		zapCfg.Encoding = "json"
	}

	if cfg.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}
