package database

import (
	"fmt"
	"net/url"
)

// Config describes how to reach the archive Postgres instance. DSN
// takes precedence when set; otherwise a connection string is
// assembled from the structured fields, grounded on
// kalshi/internal/database/conn_string.go's BuildConnString.
type Config struct {
	DSN string

	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MinConns int32
	MaxConns int32
}

// BuildConnString returns cfg.DSN verbatim if set, otherwise assembles
// a postgres:// URL from the structured fields, URL-encoding the
// password so special characters survive.
func BuildConnString(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
