// Package repository loads the inputs a planning run needs (agents,
// rule text, shift catalog, target curve) and persists its outputs
// (flattened result rows and summary figures) via database/sql over
// pgx's stdlib driver, exactly as the teacher wires it in cmd/api's
// sql.Open("pgx", ...) — the only difference is there is no ORM-style
// ownership of intermediate annealer state, which is never persisted.
package repository

import (
	"database/sql"

	"github.com/wfplan-dev/wfplan-core/internal/config"
)

// Repository is the single entry point for all persistence in this
// module; every method opens its own bounded-timeout context from cfg.
type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

// NewRepository wraps an already-opened connection pool.
func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{cfg: cfg, dbpool: dbpool}
}
