package config

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetupLogger applies the configured level and format to the global logrus logger.
func SetupLogger(cfg *Config) {
	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
