package repository

import (
	"context"
	"time"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

// CreatePlanRun inserts a new run in PlanRunPending status.
func (r *Repository) CreatePlanRun(run *domain.PlanRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO plan_runs (description, week, temp_schedule, comfort_weight, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	params := []any{run.Description, run.Week, run.TempSchedule, run.ComfortWeight, domain.PlanRunPending}
	return r.dbpool.QueryRowContext(ctx, query, params...).Scan(&run.ID, &run.CreatedAt, &run.Version)
}

// UpdatePlanRunStatus moves a run's lifecycle status forward, optimistic-
// locked on Version exactly as the teacher locks its mutable rows.
func (r *Repository) UpdatePlanRunStatus(run *domain.PlanRun, status domain.PlanRunStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE plan_runs
		SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`
	err := r.dbpool.QueryRowContext(ctx, query, status, run.ID, run.Version).Scan(&run.Version)
	if err != nil {
		return err
	}
	run.Status = status
	return nil
}

// GetNextPendingPlanRun returns the oldest still-pending run, or
// (nil, sql.ErrNoRows) if none is queued.
func (r *Repository) GetNextPendingPlanRun() (*domain.PlanRun, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, description, week, temp_schedule, comfort_weight, status, created_at, version
		FROM plan_runs
		WHERE status = $1
		ORDER BY created_at
		LIMIT 1
	`
	run := &domain.PlanRun{}
	err := r.dbpool.QueryRowContext(ctx, query, domain.PlanRunPending).Scan(
		&run.ID, &run.Description, &run.Week, &run.TempSchedule, &run.ComfortWeight,
		&run.Status, &run.CreatedAt, &run.Version,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetPlanRun loads a run by ID.
func (r *Repository) GetPlanRun(id int64) (*domain.PlanRun, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, description, week, temp_schedule, comfort_weight, status, created_at, version
		FROM plan_runs
		WHERE id = $1
	`
	run := &domain.PlanRun{}
	err := r.dbpool.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Description, &run.Week, &run.TempSchedule, &run.ComfortWeight,
		&run.Status, &run.CreatedAt, &run.Version,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// SavePlanResults persists a run's flattened output plan and its
// summary figures in one transaction; it never touches sampler RNG
// state, DFAs, or in-progress mutation scratch, which are not
// persisted at all.
func (r *Repository) SavePlanResults(results []domain.PlanResult, summary domain.PlanResultSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, res := range results {
		query := `
			INSERT INTO plan_results (plan_run_id, agent_code, day, shift_code)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, res.PlanRunID, res.AgentCode, res.Day, res.ShiftCode); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO plan_result_summaries (
			plan_run_id,
			staffing_energy_before, comfort_energy_before, total_energy_before,
			staffing_energy_after, comfort_energy_after, total_energy_after,
			temperature_initial, temperature_final, annealing_steps,
			target_hours, staffing_hours, difference_pct, elapsed_seconds
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	params := []any{
		summary.PlanRunID,
		summary.StaffingEnergyBefore, summary.ComfortEnergyBefore, summary.TotalEnergyBefore,
		summary.StaffingEnergyAfter, summary.ComfortEnergyAfter, summary.TotalEnergyAfter,
		summary.TemperatureInitial, summary.TemperatureFinal, summary.AnnealingSteps,
		summary.TargetHours, summary.StaffingHours, summary.DifferencePct, summary.ElapsedSeconds,
	}
	if _, err := tx.ExecContext(ctx, query, params...); err != nil {
		return err
	}

	return tx.Commit()
}
