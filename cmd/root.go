package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crillab/ncsort/config"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	engine     string
	solver     string
	logLevel   string
}

func (o *globalOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&o.engine, "engine", "", "Engine solving instances: exec, gophersat or gini (overrides NCSORT_ENGINE)")
	fs.StringVar(&o.solver, "solver", "", "External engine binary, for the exec engine (overrides NCSORT_SOLVER)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level (overrides NCSORT_LOG_LEVEL)")
}

// loadConfig returns the config from the --config file (or the defaults),
// then the environment, then the command-line flags, in increasing priority.
func (o *globalOptions) loadConfig() (config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if o.engine != "" {
		cfg.Solver.Engine = o.engine
	}
	if o.solver != "" {
		cfg.Solver.Path = o.solver
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, cfg.Validate()
}

// setup loads the config and builds the logger cmd reports to.
func (o *globalOptions) setup(cmd *cobra.Command) (config.Config, *logrus.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return cfg, nil, err
	}
	logger.SetOutput(cmd.ErrOrStderr())
	return cfg, logger, nil
}

// NewRootCmd returns the ncsort command and all its subcommands.
func NewRootCmd() *cobra.Command {
	o := &globalOptions{}
	root := &cobra.Command{
		Use:   "ncsort",
		Short: "Learn non-compensatory sorting models with SAT solvers",
		Long: `ncsort learns NCS models (sufficient coalitions and category profiles) from examples
sorted into ordered categories, by encoding them as SAT or MaxSAT instances.`,
		SilenceUsage: true,
	}
	o.AddFlags(root.PersistentFlags())

	root.AddCommand(newLearnCmd(o))
	root.AddCommand(newEncodeCmd(o))
	root.AddCommand(newInspectCmd(o))
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newEvalCmd())
	return root
}

// Execute runs the command named on the command line.
func Execute() error {
	return NewRootCmd().Execute()
}
