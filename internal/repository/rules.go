package repository

import (
	"context"
	"time"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

// GetLatestRuleForAgent returns the highest-Version RuleSpec for agentID.
func (r *Repository) GetLatestRuleForAgent(agentID int64) (*domain.RuleSpec, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, agent_id, pattern, created_at, version
		FROM rule_specs
		WHERE agent_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	rs := &domain.RuleSpec{}
	err := r.dbpool.QueryRowContext(ctx, query, agentID).
		Scan(&rs.ID, &rs.AgentID, &rs.Pattern, &rs.CreatedAt, &rs.Version)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// CreateRule inserts a new rule version for an agent.
func (r *Repository) CreateRule(rs *domain.RuleSpec) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO rule_specs (agent_id, pattern, version)
		VALUES ($1, $2, COALESCE((SELECT MAX(version) + 1 FROM rule_specs WHERE agent_id = $1), 1))
		RETURNING id, created_at, version
	`
	return r.dbpool.QueryRowContext(ctx, query, rs.AgentID, rs.Pattern).Scan(&rs.ID, &rs.CreatedAt, &rs.Version)
}

// GetShiftCatalog returns every named shift available to rule patterns.
func (r *Repository) GetShiftCatalog() ([]domain.ShiftCatalogEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT sc.code, sci.start_minute, sci.end_minute
		FROM shift_catalog sc
		LEFT JOIN shift_catalog_intervals sci ON sci.shift_code = sc.code
		ORDER BY sc.code, sci.start_minute
	`
	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCode := make(map[string]*domain.ShiftCatalogEntry)
	order := make([]string, 0)
	for rows.Next() {
		var code string
		var start, end *int
		if err := rows.Scan(&code, &start, &end); err != nil {
			return nil, err
		}
		entry, ok := byCode[code]
		if !ok {
			entry = &domain.ShiftCatalogEntry{Code: code}
			byCode[code] = entry
			order = append(order, code)
		}
		if start != nil && end != nil {
			entry.Intervals = append(entry.Intervals, [2]int{*start, *end})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.ShiftCatalogEntry, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out, nil
}

// GetTargetCurve returns every target-curve sample for a plan run, in
// SlotIndex order.
func (r *Repository) GetTargetCurve(planRunID int64) ([]domain.TargetCurveRow, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT slot_index, value
		FROM target_curve_rows
		WHERE plan_run_id = $1
		ORDER BY slot_index
	`
	rows, err := r.dbpool.QueryContext(ctx, query, planRunID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.TargetCurveRow, 0)
	for rows.Next() {
		var row domain.TargetCurveRow
		if err := rows.Scan(&row.SlotIndex, &row.Value); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
