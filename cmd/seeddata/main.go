// Command seeddata inserts demo data for local development and manual
// testing, mirroring cmd/seed's flag-selected-operation shape: pick an
// op, optionally a count, and it populates one corner of the schema.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/wfplan-dev/wfplan-core/internal/config"
	"github.com/wfplan-dev/wfplan-core/internal/domain"
	"github.com/wfplan-dev/wfplan-core/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var planRunID int64

	flag.IntVar(&op, "op", 0, "operation to run (1: agents, 2: shift catalog, 3: rules, 4: target curve, 5: full demo dataset)")
	flag.IntVar(&n, "n", 5, "record count for ops that insert multiple rows")
	flag.Int64Var(&planRunID, "plan-run-id", 0, "plan run ID to attach a target curve to (op 4)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		logger.Error("no operation specified, pass -op")
	case 1:
		seedAgents(repo, n)
	case 2:
		seedShiftCatalog(repo)
	case 3:
		seedRules(repo)
	case 4:
		if planRunID <= 0 {
			logger.Error("op 4 requires -plan-run-id")
			return
		}
		seedTargetCurve(repo, planRunID)
	case 5:
		seedDemoDataset(repo)
	default:
		logger.Error("unknown operation", "op", op)
	}
}

var firstNames = []string{"Alex", "Jordan", "Sam", "Taylor", "Morgan", "Casey", "Riley", "Jamie", "Avery", "Quinn"}
var lastNames = []string{"Nguyen", "Garcia", "Smith", "Patel", "Kim", "Johnson", "Martinez", "Chen", "Brown", "Davis"}

func randomAgentName() string {
	return fmt.Sprintf("%s %s", firstNames[rand.Intn(len(firstNames))], lastNames[rand.Intn(len(lastNames))])
}

func randomAgentCode(i int) string {
	return fmt.Sprintf("AG%04d", i)
}

func seedAgents(repo *repository.Repository, n int) {
	if n <= 0 {
		slog.Error("invalid agent count")
		return
	}
	cnt := 0
	for i := 0; i < n; i++ {
		a := &domain.Agent{Code: randomAgentCode(i + 1), FullName: randomAgentName()}
		if err := repo.CreateAgent(a); err != nil {
			slog.Error("failed to insert agent", "error", err)
			continue
		}
		cnt++
	}
	slog.Info("seeded agents", "count", cnt)
}

// demoCatalog is a small but representative shift catalog: a rest
// shift plus a morning, afternoon, and evening working shift.
func demoCatalog() []domain.ShiftCatalogEntry {
	return []domain.ShiftCatalogEntry{
		{Code: "OFF"},
		{Code: "M", Intervals: [][2]int{{8 * 60, 16 * 60}}},
		{Code: "A", Intervals: [][2]int{{12 * 60, 20 * 60}}},
		{Code: "E", Intervals: [][2]int{{16 * 60, 24 * 60}}},
	}
}

func seedShiftCatalog(repo *repository.Repository) {
	cnt := 0
	for _, entry := range demoCatalog() {
		if err := repo.CreateShiftCatalogEntry(entry); err != nil {
			slog.Error("failed to insert shift catalog entry", "code", entry.Code, "error", err)
			continue
		}
		cnt++
	}
	slog.Info("seeded shift catalog", "count", cnt)
}

// demoRulePattern gives every agent the same rotating pattern: any mix
// of morning/afternoon/evening/rest shifts, which the sampler resolves
// to a real per-agent assignment at run time.
const demoRulePattern = "(OFF+M+A+E)*"

func seedRules(repo *repository.Repository) {
	agents, err := repo.GetAllAgents()
	if err != nil {
		slog.Error("failed to load agents", "error", err)
		return
	}
	cnt := 0
	for _, agent := range agents {
		rs := &domain.RuleSpec{AgentID: agent.ID, Pattern: demoRulePattern}
		if err := repo.CreateRule(rs); err != nil {
			slog.Error("failed to insert rule", "agent", agent.Code, "error", err)
			continue
		}
		cnt++
	}
	slog.Info("seeded rules", "count", cnt)
}

// demoTargetSamples is a flat weekly demand curve at 1-hour resolution:
// busier during the day, quiet overnight.
func demoTargetSamples() []float64 {
	samples := make([]float64, 24*7)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			v := 1.0
			if hour >= 9 && hour < 21 {
				v = 4.0
			}
			samples[day*24+hour] = v
		}
	}
	return samples
}

func seedTargetCurve(repo *repository.Repository, planRunID int64) {
	samples := demoTargetSamples()
	rows := make([]domain.TargetCurveRow, 0, len(samples)*12)
	// 1-hour samples repeated across the core's 5-minute slots, matching
	// the resolution internal/target.New expects from persisted rows.
	for i, v := range samples {
		for slot := 0; slot < 12; slot++ {
			rows = append(rows, domain.TargetCurveRow{SlotIndex: i*12 + slot, Value: v})
		}
	}
	if err := repo.CreateTargetCurveRows(planRunID, rows); err != nil {
		slog.Error("failed to insert target curve", "error", err)
		return
	}
	slog.Info("seeded target curve", "planRunID", planRunID, "rows", len(rows))
}

func seedDemoDataset(repo *repository.Repository) {
	seedShiftCatalog(repo)
	seedAgents(repo, 8)
	seedRules(repo)

	run := &domain.PlanRun{
		Description:   "demo weekly plan",
		Week:          0,
		TempSchedule:  0.9,
		ComfortWeight: 1.0,
		Status:        domain.PlanRunPending,
	}
	if err := repo.CreatePlanRun(run); err != nil {
		slog.Error("failed to insert demo plan run", "error", err)
		return
	}
	seedTargetCurve(repo, run.ID)

	slog.Info("seeded full demo dataset", "planRunID", run.ID)
}
