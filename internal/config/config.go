// Package config provides configuration helpers for go-ardubot commands.
package config

import (
	"os"
	"strconv"
)

// Default daemon configuration.
const (
	DefaultListenAddr = ":8000"
	DefaultLogLevel   = "info"
)

// ListenAddr returns the listen address from the BOT_ADDR env var.
// Falls back to DefaultListenAddr if not set.
func ListenAddr() string {
	if addr := os.Getenv("BOT_ADDR"); addr != "" {
		return addr
	}
	return DefaultListenAddr
}

// LogLevel returns the log level from the LOG_LEVEL env var.
// Falls back to DefaultLogLevel if not set.
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}

// SimObstacleCm returns the simulated obstacle distance from the
// SIM_OBSTACLE_CM env var. Falls back to the provided default when unset
// or unparseable. A negative value means no obstacle (no echo).
func SimObstacleCm(def int) int {
	if raw := os.Getenv("SIM_OBSTACLE_CM"); raw != "" {
		if cm, err := strconv.Atoi(raw); err == nil {
			return cm
		}
	}
	return def
}
