package config

import (
	"go.uber.org/zap/zapcore"

	"github.com/tradenet/go-bulletin/log"
)

const defaultLoggingLevel = zapcore.InfoLevel

// LoggerConfig holds the logging level for each module.
type LoggerConfig struct {
	Encoder             string `mapstructure:"log-encoder"`
	AppLoggerLevel      string `mapstructure:"app"`
	P2PLoggerLevel      string `mapstructure:"p2p"`
	PubSubLoggerLevel   string `mapstructure:"pubsub"`
	StoreLoggerLevel    string `mapstructure:"store"`
	PersistLoggerLevel  string `mapstructure:"persist"`
	DataSyncLoggerLevel string `mapstructure:"datasync"`
	MetricsLoggerLevel  string `mapstructure:"metrics"`
}

func DefaultLoggingConfig() LoggerConfig {
	return LoggerConfig{
		Encoder:             log.ConsoleEncoder,
		AppLoggerLevel:      defaultLoggingLevel.String(),
		P2PLoggerLevel:      zapcore.WarnLevel.String(),
		PubSubLoggerLevel:   defaultLoggingLevel.String(),
		StoreLoggerLevel:    defaultLoggingLevel.String(),
		PersistLoggerLevel:  defaultLoggingLevel.String(),
		DataSyncLoggerLevel: defaultLoggingLevel.String(),
		MetricsLoggerLevel:  defaultLoggingLevel.String(),
	}
}
