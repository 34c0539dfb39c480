// Package store implements the fetch collaborators backing every feed and
// profile read. All pagination, search filtering and match computation is
// server-side: list reads call the database's stored procedures
// (fetch_paginated_jobs4user and friends) and this package only shapes the
// rows. Raw match scores come back as floats in [0, 1] and are normalized
// for display here, at the boundary, so nothing downstream ever sees a raw
// score.
package store

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the connection pool with typed read/write methods.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ErrNotFound is returned when a requested row is missing or not visible
// to the requesting identity.
var ErrNotFound = fmt.Errorf("record not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// pageStart converts a 1-based page and limit into the offset the stored
// procedures expect.
func pageStart(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// text coerces a nullable column to a plain string.
func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
