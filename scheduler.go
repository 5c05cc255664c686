// Package scheduler is the public facade of the university timetabling
// evolutionary scheduler: it wires the quantum time system, context
// assembly, constraint/repair registries, and the multi-objective
// evolutionary loop into a single New/Run entry point.
//
// Mirrors the teacher's flat package-level facade
// (github.com/JensRantil/meeting-scheduler's New/Run), generalized from a
// single-objective eaopt.GA meeting scheduler to the multi-objective NSGA-II
// course timetabling loop described in spec.md.
package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/constraints"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/evolve"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/ports"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/repair"
)

// Result re-exports the evolutionary loop's output contract.
type Result = evolve.Result

// Engine is the assembled, ready-to-run scheduler.
type Engine struct {
	inner *evolve.Engine
}

// New assembles an Engine from raw input records and configuration: builds
// the quantum time system, adapts the input into domain entities, runs
// context assembly (C3), and constructs the constraint/repair registries.
// Returns an *ports.Error wrapping InputSchemaError/InvariantBreach/
// InfeasibleSearch/ConfigurationError per spec.md §7 on any failure; the
// core refuses to start rather than run against a broken context.
func New(in ports.InputSet, cfg *ports.Config, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		loaded, err := ports.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	days, err := defaultOperatingDays(cfg.QuantumMinutes)
	if err != nil {
		return nil, err
	}
	qts, err := quantum.New(days, cfg.QuantumMinutes)
	if err != nil {
		return nil, ports.Wrap(err, ports.ConfigurationError, "failed to build quantum time system")
	}

	courses, groups, instructors, rooms, err := ports.Adapt(qts, in)
	if err != nil {
		return nil, err
	}

	earliest, err := ports.ParseHHMM(cfg.EarliestPreferredTime)
	if err != nil {
		return nil, err
	}
	latest, err := ports.ParseHHMM(cfg.LatestPreferredTime)
	if err != nil {
		return nil, err
	}
	breakStart, err := ports.ParseHHMM(cfg.MiddayBreakStartTime)
	if err != nil {
		return nil, err
	}
	breakEnd, err := ports.ParseHHMM(cfg.MiddayBreakEndTime)
	if err != nil {
		return nil, err
	}

	sctx, err := schedctx.Assemble(courses, groups, instructors, rooms, qts, nil, schedctx.Preferences{
		EarliestPreferredMin:  earliest,
		LatestPreferredMin:    latest,
		MiddayBreakStartMin:   breakStart,
		MiddayBreakEndMin:     breakEnd,
		MaxSessionCoalescence: cfg.MaxSessionCoalescence,
	})
	if err != nil {
		return nil, err
	}

	hardCfg := make(map[string]constraints.Toggle, len(cfg.HardConstraints))
	for name, spec := range cfg.HardConstraints {
		hardCfg[name] = constraints.Toggle{Enabled: spec.Enabled, Weight: spec.Weight}
	}
	softCfg := make(map[string]constraints.Toggle, len(cfg.SoftConstraints))
	for name, spec := range cfg.SoftConstraints {
		softCfg[name] = constraints.Toggle{Enabled: spec.Enabled, Weight: spec.Weight}
	}
	registry := constraints.NewRegistry(hardCfg, softCfg)
	if unknown := registry.UnknownKeys(); len(unknown) > 0 {
		return nil, ports.New(ports.ConfigurationError, fmt.Sprintf("unknown constraint keys: %v", unknown))
	}

	repairCfg := repair.Config{
		Heuristics:         make(map[string]repair.Toggle, len(cfg.RepairHeuristics)),
		MaxIterations:      cfg.MaxRepairIterations,
		ApplyAfterMutation: cfg.ApplyAfterMutation,
		MemeticMode:        cfg.MemeticMode,
		ElitePercentage:    cfg.ElitePercentage,
		MemeticIterations:  cfg.MemeticIterations,
	}
	for name, spec := range cfg.RepairHeuristics {
		repairCfg.Heuristics[name] = repair.Toggle{Enabled: spec.Enabled, Priority: spec.Priority}
	}
	repairRegistry := repair.NewRegistry(repairCfg)

	return &Engine{inner: &evolve.Engine{
		Context:     sctx,
		Constraints: registry,
		Repair:      repairRegistry,
		Config: evolve.Config{
			PopSize:               cfg.PopSize,
			NGen:                  cfg.NGen,
			CXPB:                  cfg.CXPB,
			MUTPB:                 cfg.MUTPB,
			MaxSessionCoalescence: cfg.MaxSessionCoalescence,
			UseMultiprocessing:    cfg.UseMultiprocessing,
			NumWorkers:            cfg.NumWorkers,
			Seed:                  cfg.Seed,
		},
		Logger: logger,
	}}, nil
}

// Run executes the evolutionary loop. Cancellable at generation boundaries
// via ctx, per spec.md §5.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	return e.inner.Run(ctx)
}

// defaultOperatingDays is the Sun-Thu, 08:00-18:00 default operating week
// spec.md's S1 scenario exercises; real deployments override this via a
// richer Config surface the ingestion collaborator supplies (out of scope
// here per spec.md §1).
func defaultOperatingDays(quantumMin int) ([]quantum.OperatingDay, error) {
	if quantumMin <= 0 {
		quantumMin = 15
	}
	return []quantum.OperatingDay{
		{Day: "Sun", OpenMin: 8 * 60, CloseMin: 18 * 60},
		{Day: "Mon", OpenMin: 8 * 60, CloseMin: 18 * 60},
		{Day: "Tue", OpenMin: 8 * 60, CloseMin: 18 * 60},
		{Day: "Wed", OpenMin: 8 * 60, CloseMin: 18 * 60},
		{Day: "Thu", OpenMin: 8 * 60, CloseMin: 18 * 60},
	}, nil
}
