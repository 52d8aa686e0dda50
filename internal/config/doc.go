// Package config loads tablebot settings from defaults, an optional
// tablebot.yaml, .env files, TABLEBOT_* environment variables and flags.
package config
