package repository

import (
	"context"
	"time"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

// GetAllAgents returns every agent, ordered by code so callers get a
// stable plan.New agent ordering across repeated runs.
func (r *Repository) GetAllAgents() ([]domain.Agent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, code, full_name, created_at, version
		FROM agents
		ORDER BY code
	`
	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]domain.Agent, 0)
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(&a.ID, &a.Code, &a.FullName, &a.CreatedAt, &a.Version); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return agents, nil
}

// CreateAgent inserts a new agent, populating ID/CreatedAt/Version.
func (r *Repository) CreateAgent(a *domain.Agent) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO agents (code, full_name)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`
	return r.dbpool.QueryRowContext(ctx, query, a.Code, a.FullName).Scan(&a.ID, &a.CreatedAt, &a.Version)
}
