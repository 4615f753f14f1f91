package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"evoloop/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine EngineConfig
	Run    RunConfig
	Ledger LedgerConfig
	Server ServerConfig
}

// EngineConfig seeds the engine and optionally overrides its starting scores
type EngineConfig struct {
	Seed int64
	// InitialMetrics overrides the built-in metric set when non-nil.
	InitialMetrics map[string]float64
}

// RunConfig bounds the driving loop
type RunConfig struct {
	Cycles    int
	Delay     time.Duration
	OutputDir string
}

// LedgerConfig selects the history database. An empty driver disables
// database persistence entirely.
type LedgerConfig struct {
	Driver string
	DSN    string
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Addr string
}

// Load reads configuration from environment variables, applying defaults for
// anything unset. Only malformed values produce an error.
func Load() (*Config, error) {
	cfg := &Config{
		Engine: EngineConfig{Seed: 42},
		Run: RunConfig{
			Cycles:    5,
			Delay:     time.Second,
			OutputDir: ".",
		},
		Server: ServerConfig{Addr: ":8080"},
	}

	if v := os.Getenv("EVOLOOP_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid EVOLOOP_SEED")
		}
		cfg.Engine.Seed = seed
	}

	if v := os.Getenv("EVOLOOP_CYCLES"); v != "" {
		cycles, err := strconv.Atoi(v)
		if err != nil || cycles < 0 {
			return nil, errors.ConfigInvalid(fmt.Sprintf("invalid EVOLOOP_CYCLES: %q", v))
		}
		cfg.Run.Cycles = cycles
	}

	if v := os.Getenv("EVOLOOP_DELAY"); v != "" {
		delay, err := time.ParseDuration(v)
		if err != nil || delay < 0 {
			return nil, errors.ConfigInvalid(fmt.Sprintf("invalid EVOLOOP_DELAY: %q", v))
		}
		cfg.Run.Delay = delay
	}

	if v := os.Getenv("EVOLOOP_OUTPUT_DIR"); v != "" {
		cfg.Run.OutputDir = v
	}

	if v := os.Getenv("EVOLOOP_METRICS"); v != "" {
		scores, err := ParseMetricScores(v)
		if err != nil {
			return nil, errors.Wrap(err, "invalid EVOLOOP_METRICS")
		}
		cfg.Engine.InitialMetrics = scores
	}

	cfg.Ledger.Driver = os.Getenv("EVOLOOP_DB_DRIVER")
	cfg.Ledger.DSN = os.Getenv("EVOLOOP_DB_DSN")
	if cfg.Ledger.Driver != "" && cfg.Ledger.DSN == "" {
		return nil, errors.ConfigInvalid("EVOLOOP_DB_DSN is required when EVOLOOP_DB_DRIVER is set")
	}

	if v := os.Getenv("EVOLOOP_API_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	return cfg, nil
}

// ParseMetricScores parses a comma-separated "name=score" list, the format of
// the EVOLOOP_METRICS override.
func ParseMetricScores(s string) (map[string]float64, error) {
	scores := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("malformed metric entry %q (want name=score)", pair)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed score in %q: %w", pair, err)
		}
		scores[name] = score
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no metric entries found")
	}
	return scores, nil
}
