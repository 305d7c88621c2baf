package repository

import (
	"context"
	"time"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

// CreateShiftCatalogEntry inserts a named shift and its intervals (a
// working shift carries one or more [start,end) minute spans; a rest
// shift carries none).
func (r *Repository) CreateShiftCatalogEntry(entry domain.ShiftCatalogEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `INSERT INTO shift_catalog (code) VALUES ($1)`, entry.Code); err != nil {
		return err
	}
	for _, iv := range entry.Intervals {
		query := `INSERT INTO shift_catalog_intervals (shift_code, start_minute, end_minute) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, query, entry.Code, iv[0], iv[1]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CreateTargetCurveRows bulk-inserts a plan run's target curve.
func (r *Repository) CreateTargetCurveRows(planRunID int64, rows []domain.TargetCurveRow) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO target_curve_rows (plan_run_id, slot_index, value) VALUES ($1, $2, $3)`
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, query, planRunID, row.SlotIndex, row.Value); err != nil {
			return err
		}
	}

	return tx.Commit()
}
