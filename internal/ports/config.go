package ports

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConstraintToggleSpec is the wire shape of one entry in
// HARD_CONSTRAINTS_CONFIG / SOFT_CONSTRAINTS_CONFIG.
type ConstraintToggleSpec struct {
	Enabled bool
	Weight  float64
}

// RepairToggleSpec is the wire shape of one entry in
// REPAIR_HEURISTICS_CONFIG's per-heuristic table.
type RepairToggleSpec struct {
	Enabled  bool
	Priority int
}

// Config is the full set of options spec.md §6 names, loaded the way
// noah-isme-sma-adp-api/pkg/config.Load() loads its Config: env-first via
// viper, with godotenv populating a local .env file first if present.
type Config struct {
	PopSize            int
	NGen               int
	CXPB               float64
	MUTPB              float64
	UseMultiprocessing bool
	NumWorkers         int
	Seed               int64

	QuantumMinutes        int
	EarliestPreferredTime string
	LatestPreferredTime   string
	MiddayBreakStartTime  string
	MiddayBreakEndTime    string
	MaxSessionCoalescence int

	HardConstraints map[string]ConstraintToggleSpec
	SoftConstraints map[string]ConstraintToggleSpec
	RepairHeuristics map[string]RepairToggleSpec

	MaxRepairIterations int
	ApplyAfterMutation  bool
	MemeticMode         bool
	ElitePercentage     float64
	MemeticIterations   int
}

// Load reads configuration from environment variables (optionally seeded by
// a .env file), applying the defaults spec.md §6 documents for every
// optional field.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("POP_SIZE", 50)
	v.SetDefault("NGEN", 100)
	v.SetDefault("CXPB", 0.7)
	v.SetDefault("MUTPB", 0.15)
	v.SetDefault("USE_MULTIPROCESSING", true)
	v.SetDefault("NUM_WORKERS", 0)
	v.SetDefault("SEED", 1)
	v.SetDefault("QUANTUM_MINUTES", 15)
	v.SetDefault("EARLIEST_PREFERRED_TIME", "08:00")
	v.SetDefault("LATEST_PREFERRED_TIME", "17:00")
	v.SetDefault("MIDDAY_BREAK_START_TIME", "12:00")
	v.SetDefault("MIDDAY_BREAK_END_TIME", "13:00")
	v.SetDefault("MAX_SESSION_COALESCENCE", 2)
	v.SetDefault("MAX_REPAIR_ITERATIONS", 3)
	v.SetDefault("APPLY_AFTER_MUTATION", true)
	v.SetDefault("MEMETIC_MODE", false)
	v.SetDefault("ELITE_PERCENTAGE", 0.1)
	v.SetDefault("MEMETIC_ITERATIONS", 1)

	cfg := &Config{
		PopSize:               v.GetInt("POP_SIZE"),
		NGen:                  v.GetInt("NGEN"),
		CXPB:                  v.GetFloat64("CXPB"),
		MUTPB:                 v.GetFloat64("MUTPB"),
		UseMultiprocessing:    v.GetBool("USE_MULTIPROCESSING"),
		NumWorkers:            v.GetInt("NUM_WORKERS"),
		Seed:                  v.GetInt64("SEED"),
		QuantumMinutes:        v.GetInt("QUANTUM_MINUTES"),
		EarliestPreferredTime: v.GetString("EARLIEST_PREFERRED_TIME"),
		LatestPreferredTime:   v.GetString("LATEST_PREFERRED_TIME"),
		MiddayBreakStartTime:  v.GetString("MIDDAY_BREAK_START_TIME"),
		MiddayBreakEndTime:    v.GetString("MIDDAY_BREAK_END_TIME"),
		MaxSessionCoalescence: v.GetInt("MAX_SESSION_COALESCENCE"),
		MaxRepairIterations:   v.GetInt("MAX_REPAIR_ITERATIONS"),
		ApplyAfterMutation:    v.GetBool("APPLY_AFTER_MUTATION"),
		MemeticMode:           v.GetBool("MEMETIC_MODE"),
		ElitePercentage:       v.GetFloat64("ELITE_PERCENTAGE"),
		MemeticIterations:     v.GetInt("MEMETIC_ITERATIONS"),
	}

	if err := v.UnmarshalKey("HARD_CONSTRAINTS_CONFIG", &cfg.HardConstraints); err != nil {
		return nil, Wrap(err, ConfigurationError, "failed to parse HARD_CONSTRAINTS_CONFIG")
	}
	if err := v.UnmarshalKey("SOFT_CONSTRAINTS_CONFIG", &cfg.SoftConstraints); err != nil {
		return nil, Wrap(err, ConfigurationError, "failed to parse SOFT_CONSTRAINTS_CONFIG")
	}
	if err := v.UnmarshalKey("REPAIR_HEURISTICS_CONFIG", &cfg.RepairHeuristics); err != nil {
		return nil, Wrap(err, ConfigurationError, "failed to parse REPAIR_HEURISTICS_CONFIG")
	}

	return cfg, nil
}

// ParseHHMM converts a "HH:MM" string into minutes-since-midnight. A
// malformed time string is an InputSchemaError — configuration is supplied
// by the same trusted boundary as the input contract.
func ParseHHMM(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, New(InputSchemaError, "malformed time: "+hhmm)
	}
	h, err1 := parseDigits(parts[0])
	m, err2 := parseDigits(parts[1])
	if err1 != nil || err2 != nil {
		return 0, New(InputSchemaError, "malformed time: "+hhmm)
	}
	return h*60 + m, nil
}

func parseDigits(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, New(InputSchemaError, "empty time component")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, New(InputSchemaError, "non-digit in time component: "+s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
