// Command planservice runs one shift-plan optimization pass: it loads
// the oldest pending run from Postgres, compiles each agent's rule into
// a sampler (via Redis-cached automaton compilation), anneals the plan,
// and persists the result — then serves a read-only status endpoint
// until told to shut down. Wiring mirrors cmd/api's startup sequence.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wfplan-dev/wfplan-core/internal/automaton"
	"github.com/wfplan-dev/wfplan-core/internal/cache"
	"github.com/wfplan-dev/wfplan-core/internal/config"
	"github.com/wfplan-dev/wfplan-core/internal/domain"
	"github.com/wfplan-dev/wfplan-core/internal/notify"
	"github.com/wfplan-dev/wfplan-core/internal/plan"
	"github.com/wfplan-dev/wfplan-core/internal/repository"
	"github.com/wfplan-dev/wfplan-core/internal/ruleparser"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
	"github.com/wfplan-dev/wfplan-core/internal/staffplanner"
	"github.com/wfplan-dev/wfplan-core/internal/target"
)

// runStatus is the read-only snapshot exposed over /status, guarded by
// mu since the optimization goroutine writes it while the HTTP server
// reads it concurrently.
type runStatus struct {
	mu    sync.RWMutex
	Phase string               `json:"phase"`
	RunID int64                `json:"runID,omitempty"`
	Error string               `json:"error,omitempty"`
	Result *staffplanner.Result `json:"result,omitempty"`
}

func (s *runStatus) set(phase string, runID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Phase = phase
	s.RunID = runID
}

func (s *runStatus) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Phase = "failed"
	s.Error = err.Error()
}

func (s *runStatus) complete(result staffplanner.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Phase = "completed"
	s.Result = &result
}

func (s *runStatus) snapshot() runStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return runStatus{Phase: s.Phase, RunID: s.RunID, Error: s.Error, Result: s.Result}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return
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

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	automatonCache := cache.New(rdb, time.Duration(cfg.Redis.CacheTTL)*time.Second)

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		return
	}
	defer ch.Close()

	publisher, err := notify.NewPublisher(ch, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	if err != nil {
		logger.Error("failed to declare notification queue", "error", err)
		return
	}

	status := &runStatus{Phase: "idle"}

	run, err := repo.GetNextPendingPlanRun()
	switch {
	case errors.Is(err, sql.ErrNoRows):
		logger.Info("no pending plan run, serving status only")
	case err != nil:
		logger.Error("failed to look up pending plan run", "error", err)
		return
	default:
		go executeRun(cfg, repo, automatonCache, publisher, run, status)
	}

	mux := chi.NewRouter()
	mux.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status.snapshot())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting status server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("status server stopped", "error", err)
		}
	}()

	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("shut down cleanly")
}

// executeRun loads a pending run's inputs, anneals it, and persists the
// outcome. A panic out of the core (corerr.Invariant, per the original's
// throw-on-broken-invariant contract) is recovered here, logged, and
// turned into a failed run plus a failure notification rather than
// taking the whole process down.
func executeRun(cfg *config.Config, repo *repository.Repository, automatonCache *cache.Cache, publisher *notify.Publisher, run *domain.PlanRun, status *runStatus) {
	status.set("running", run.ID)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("plan run panicked: %v", r)
			slog.Error("plan run failed", "runID", run.ID, "error", err)
			status.fail(err)
			failRun(cfg, repo, publisher, run, err)
		}
	}()

	if err := repo.UpdatePlanRunStatus(run, domain.PlanRunRunning); err != nil {
		slog.Error("failed to mark run running", "runID", run.ID, "error", err)
		status.fail(err)
		return
	}

	result, summary, planResults, err := runPlan(cfg, repo, automatonCache, run)
	if err != nil {
		slog.Error("plan run failed", "runID", run.ID, "error", err)
		status.fail(err)
		failRun(cfg, repo, publisher, run, err)
		return
	}

	if err := repo.SavePlanResults(planResults, summary); err != nil {
		slog.Error("failed to persist plan results", "runID", run.ID, "error", err)
		status.fail(err)
		failRun(cfg, repo, publisher, run, err)
		return
	}

	if err := repo.UpdatePlanRunStatus(run, domain.PlanRunCompleted); err != nil {
		slog.Error("failed to mark run completed", "runID", run.ID, "error", err)
	}

	status.complete(result)

	notifyTo := fmt.Sprintf("agent-scheduling@%s", cfg.Email.UserDomain)
	if err := publisher.Publish(notify.PlanCompleted(notifyTo, run.ID, run.Description, summary)); err != nil {
		slog.Error("failed to publish completion notification", "runID", run.ID, "error", err)
	}
}

func failRun(cfg *config.Config, repo *repository.Repository, publisher *notify.Publisher, run *domain.PlanRun, cause error) {
	if err := repo.UpdatePlanRunStatus(run, domain.PlanRunFailed); err != nil {
		slog.Error("failed to mark run failed", "runID", run.ID, "error", err)
	}
	notifyTo := fmt.Sprintf("agent-scheduling@%s", cfg.Email.UserDomain)
	_ = publisher.Publish(notify.PlanFailed(notifyTo, run.ID, run.Description, cause.Error()))
}

// runPlan builds the plan from the run's persisted inputs, anneals it,
// and flattens the result into persistable rows. It does not itself
// touch run's lifecycle status — the caller does that around the call.
func runPlan(cfg *config.Config, repo *repository.Repository, automatonCache *cache.Cache, run *domain.PlanRun) (staffplanner.Result, domain.PlanResultSummary, []domain.PlanResult, error) {
	agents, err := repo.GetAllAgents()
	if err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}
	if len(agents) == 0 {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, fmt.Errorf("no agents configured")
	}

	catalogRows, err := repo.GetShiftCatalog()
	if err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}
	catalog, err := buildCatalog(catalogRows)
	if err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}
	// The catalog carries no version column of its own; its row count
	// is a cheap proxy invalidating the automaton cache whenever a
	// shift is added, which is the only catalog mutation the repository
	// offers (CreateShiftCatalogEntry, used by cmd/seeddata).
	catalogVersion := int64(len(catalogRows))

	curveRows, err := repo.GetTargetCurve(run.ID)
	if err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}
	samples := flattenCurve(curveRows)

	curve, err := target.New(samples, shift.SlotLength, nil)
	if err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}

	agentCodes := make([]string, len(agents))
	for i, a := range agents {
		agentCodes[i] = a.Code
	}

	p, err := plan.New(agentCodes, curve, 0)
	if err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}

	pl, err := staffplanner.New(run.Description, p, run.TempSchedule, run.ComfortWeight)
	if err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}
	if err := pl.SetNoverParams(cfg.Annealer.NoverMultiplier, cfg.Annealer.NoverBase); err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}
	if err := pl.SetWeek(int(run.Week)); err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, agent := range agents {
		rule, err := repo.GetLatestRuleForAgent(agent.ID)
		if err != nil {
			return staffplanner.Result{}, domain.PlanResultSummary{}, nil, fmt.Errorf("agent %q has no rule: %w", agent.Code, err)
		}
		dfa, err := compileRule(automatonCache, rule.Pattern, catalog, catalogVersion)
		if err != nil {
			return staffplanner.Result{}, domain.PlanResultSummary{}, nil, fmt.Errorf("agent %q rule %q: %w", agent.Code, rule.Pattern, err)
		}
		sampler := automaton.NewSampler[shift.Shift](dfa, rng)
		if err := pl.SetAgentSampler(agent.Code, sampler); err != nil {
			return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
		}
	}

	result, err := pl.Run(rng)
	if err != nil {
		return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
	}

	summary := domain.PlanResultSummary{
		PlanRunID:            run.ID,
		StaffingEnergyBefore: result.StaffingEnergyBefore,
		ComfortEnergyBefore:  result.ComfortEnergyBefore,
		TotalEnergyBefore:    result.TotalEnergyBefore,
		StaffingEnergyAfter:  result.StaffingEnergyAfter,
		ComfortEnergyAfter:   result.ComfortEnergyAfter,
		TotalEnergyAfter:     result.TotalEnergyAfter,
		TemperatureInitial:   result.TemperatureInitial,
		TemperatureFinal:     result.TemperatureFinal,
		AnnealingSteps:       int32(result.AnnealingSteps),
		ElapsedSeconds:       result.Elapsed.Seconds(),
	}
	if len(result.Days) > 0 {
		summary.TargetHours = result.Days[0].TargetHours
		summary.StaffingHours = result.Days[0].StaffingHours
		summary.DifferencePct = result.Days[0].DifferencePct
	}

	planResults := make([]domain.PlanResult, 0, len(agents)*7)
	for _, agent := range agents {
		line, err := p.AgentPlan(agent.Code)
		if err != nil {
			return staffplanner.Result{}, domain.PlanResultSummary{}, nil, err
		}
		for day := int(run.Week) * 7; day < (int(run.Week)+1)*7 && day < len(line); day++ {
			planResults = append(planResults, domain.PlanResult{
				PlanRunID: run.ID,
				AgentCode: agent.Code,
				Day:       int32(day),
				ShiftCode: line[day].Code(),
			})
		}
	}

	return result, summary, planResults, nil
}

// buildCatalog turns persisted catalog rows into the shift values the
// rule parser and automaton builder need.
func buildCatalog(rows []domain.ShiftCatalogEntry) (map[string]shift.Shift, error) {
	entries := make([]shift.Shift, 0, len(rows))
	for _, row := range rows {
		if len(row.Intervals) == 0 {
			entries = append(entries, shift.Rest(row.Code))
			continue
		}
		spans := make([]shift.Interval, len(row.Intervals))
		for i, iv := range row.Intervals {
			spans[i] = shift.Interval{Start: iv[0], End: iv[1]}
		}
		s, err := shift.New(row.Code, spans)
		if err != nil {
			return nil, fmt.Errorf("shift %q: %w", row.Code, err)
		}
		entries = append(entries, s)
	}
	return ruleparser.CatalogFromEntries(entries), nil
}

// flattenCurve turns sparse (slotIndex, value) rows into a dense slice,
// assuming the caller wrote a contiguous run starting at slot 0; gaps
// left by a non-contiguous write default to zero target staffing.
func flattenCurve(rows []domain.TargetCurveRow) []float64 {
	maxIdx := -1
	for _, row := range rows {
		if row.SlotIndex > maxIdx {
			maxIdx = row.SlotIndex
		}
	}
	samples := make([]float64, maxIdx+1)
	for _, row := range rows {
		samples[row.SlotIndex] = row.Value
	}
	return samples
}

// compileRule parses and compiles a rule pattern into a DFA, consulting
// the Redis cache first. A cache hit is logged but the DFA is still
// rebuilt: reconstructing a live automaton.DFA from its cached JSON
// shape would need a second constructor mirroring Build's bookkeeping,
// which nothing else in this service needs; the freshly built DFA is
// written back so other future consumers can read the compiled shape
// directly instead of re-parsing the rule text.
func compileRule(automatonCache *cache.Cache, pattern string, catalog map[string]shift.Shift, catalogVersion int64) (*automaton.DFA[shift.Shift], error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := cache.Key(pattern, catalogVersion)
	if _, hit, err := automatonCache.Get(ctx, key); err == nil && hit {
		slog.Debug("automaton cache hit", "pattern", pattern)
	}

	expr, err := ruleparser.Parse(pattern, catalog)
	if err != nil {
		return nil, err
	}
	slog.Debug("compiled rule", "pattern", pattern, "canonical", ruleparser.Describe(expr))

	dfa, err := automaton.Build[shift.Shift](expr, shift.EPP)
	if err != nil {
		return nil, err
	}

	compiled := toCompiledDFA(dfa)
	if err := automatonCache.Set(ctx, key, compiled); err != nil {
		slog.Warn("failed to write automaton cache entry", "pattern", pattern, "error", err)
	}

	return dfa, nil
}

func toCompiledDFA(dfa *automaton.DFA[shift.Shift]) *cache.CompiledDFA {
	alphabet := dfa.Alphabet()
	codes := make([]string, len(alphabet))
	for i, l := range alphabet {
		codes[i] = l.Code()
	}

	accepting := make([]int, 0)
	for id := 1; id <= dfa.States(); id++ {
		if dfa.Accepting(id) {
			accepting = append(accepting, id)
		}
	}

	transitions := dfa.Transitions()
	out := make([]cache.Transition, len(transitions))
	for i, tr := range transitions {
		out[i] = cache.Transition{From: tr.From, To: tr.To, Buckets: tr.Buckets}
	}

	return &cache.CompiledDFA{
		Alphabet:    codes,
		NStates:     dfa.States(),
		Accepting:   accepting,
		Transitions: out,
	}
}
