package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLState returns the Postgres error code carried by err, or "" when err did
// not come from the server.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code)
	}
	return ""
}

// Transient reports failures a caller could reasonably retry: serialization
// and deadlock aborts, lock timeouts and cancelled contexts.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch SQLState(err) {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}
