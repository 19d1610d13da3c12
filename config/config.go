// Package config holds the settings shared by the ncsort commands.
//
// Settings come, by increasing priority, from DefaultConfig, a YAML file read by Load,
// NCSORT_* environment variables applied by ApplyEnv, and command-line flags.
package config

import (
	"bytes"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/crillab/ncsort/clause"
	"github.com/crillab/ncsort/gateway"
	"github.com/crillab/ncsort/ncs"
)

// Engines that can be selected in a SolverConfig.
const (
	EngineExec      = "exec"
	EngineGophersat = "gophersat"
	EngineGini      = "gini"
)

// Config holds all ncsort settings.
type Config struct {
	Solver SolverConfig `yaml:"solver"`
	Limits LimitsConfig `yaml:"limits"`
	Log    LogConfig    `yaml:"log"`

	// Explain lists conflicting examples when an exact learner fails.
	Explain bool `yaml:"explain"`
	// Jobs is the max number of datasets learned concurrently. 0 means no limit.
	Jobs int `yaml:"jobs"`
	// MetricsFile, if set, receives the collected metrics in the Prometheus text format.
	MetricsFile string `yaml:"metrics_file"`
}

// SolverConfig selects the engine and how it is run.
type SolverConfig struct {
	// Engine is one of "exec", "gophersat" or "gini".
	Engine string `yaml:"engine"`
	// Path is the external binary run by the exec engine.
	Path    string   `yaml:"path"`
	Args    []string `yaml:"args"`
	TempDir string   `yaml:"temp_dir"`
	// Timeout bounds a whole learning run. 0 means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// LimitsConfig bounds the size of encoded instances.
type LimitsConfig struct {
	MaxVariables uint64 `yaml:"max_variables"`
	MaxClauses   uint64 `yaml:"max_clauses"`
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // Default: "info"
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Solver: SolverConfig{
			Engine: EngineExec,
			Path:   "gophersat",
		},
		Limits: LimitsConfig{
			MaxVariables: clause.DefaultLimits.MaxVariables,
			MaxClauses:   clause.DefaultLimits.MaxClauses,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// Settings missing from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "could not parse config %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with the NCSORT_* environment variables that are set.
func (cfg *Config) ApplyEnv() error {
	if e := os.Getenv("NCSORT_ENGINE"); e != "" {
		cfg.Solver.Engine = e
	}
	if p := os.Getenv("NCSORT_SOLVER"); p != "" {
		cfg.Solver.Path = p
	}
	if a, ok := os.LookupEnv("NCSORT_SOLVER_ARGS"); ok {
		cfg.Solver.Args = strings.Fields(a)
	}
	if d := os.Getenv("NCSORT_TMPDIR"); d != "" {
		cfg.Solver.TempDir = d
	}
	if t := os.Getenv("NCSORT_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return errors.Wrap(err, "invalid NCSORT_TIMEOUT")
		}
		cfg.Solver.Timeout = d
	}
	if v := os.Getenv("NCSORT_MAX_VARIABLES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid NCSORT_MAX_VARIABLES")
		}
		cfg.Limits.MaxVariables = n
	}
	if c := os.Getenv("NCSORT_MAX_CLAUSES"); c != "" {
		n, err := strconv.ParseUint(c, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid NCSORT_MAX_CLAUSES")
		}
		cfg.Limits.MaxClauses = n
	}
	if j := os.Getenv("NCSORT_JOBS"); j != "" {
		n, err := strconv.Atoi(j)
		if err != nil {
			return errors.Wrap(err, "invalid NCSORT_JOBS")
		}
		cfg.Jobs = n
	}
	if l := os.Getenv("NCSORT_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}
	if f := os.Getenv("NCSORT_LOG_FORMAT"); f != "" {
		cfg.Log.Format = f
	}
	return nil
}

// Validate returns a ConfigurationError if cfg cannot be used.
func (cfg Config) Validate() error {
	switch cfg.Solver.Engine {
	case EngineExec:
		if cfg.Solver.Path == "" {
			return ncs.Configurationf("exec engine needs a solver path")
		}
	case EngineGophersat, EngineGini:
	default:
		return ncs.Configurationf("unknown engine %q", cfg.Solver.Engine)
	}
	if cfg.Limits.MaxVariables == 0 || cfg.Limits.MaxClauses == 0 {
		return ncs.Configurationf("limits must be positive")
	}
	if cfg.Jobs < 0 {
		return ncs.Configurationf("jobs must be >= 0, got %d", cfg.Jobs)
	}
	if cfg.Solver.Timeout < 0 {
		return ncs.Configurationf("timeout must be >= 0, got %v", cfg.Solver.Timeout)
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return ncs.Configurationf("%v", err)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return ncs.Configurationf("unknown log format %q", cfg.Log.Format)
	}
	return nil
}

// ClauseLimits returns the limits the encoder must honor.
func (cfg Config) ClauseLimits() clause.Limits {
	return clause.Limits{MaxVariables: cfg.Limits.MaxVariables, MaxClauses: cfg.Limits.MaxClauses}
}

// NewLogger returns a logger with the configured level and formatter.
func (cfg Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, ncs.Configurationf("%v", err)
	}
	logger := logrus.New()
	logger.SetLevel(level)
	switch cfg.Log.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, ncs.Configurationf("unknown log format %q", cfg.Log.Format)
	}
	return logger, nil
}

// NewGateway returns the engine selected by cfg.
func (cfg Config) NewGateway(logger logrus.FieldLogger) (gateway.Gateway, error) {
	switch cfg.Solver.Engine {
	case EngineExec:
		opts := []gateway.ExecOption{
			gateway.WithArgs(cfg.Solver.Args...),
			gateway.WithTempDir(cfg.Solver.TempDir),
		}
		if logger != nil {
			opts = append(opts, gateway.WithExecLogger(logger))
		}
		return gateway.NewExec(cfg.Solver.Path, opts...), nil
	case EngineGophersat:
		return gateway.NewGophersat(), nil
	case EngineGini:
		return gateway.NewGini(), nil
	default:
		return nil, ncs.Configurationf("unknown engine %q", cfg.Solver.Engine)
	}
}
