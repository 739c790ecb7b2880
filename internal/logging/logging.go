// Package logging builds the process-wide structured logger.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/organ-match-server/internal/domain"
)

// NewLogger creates a logrus logger configured per LoggingConfig.
func NewLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
