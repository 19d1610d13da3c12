package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crillab/ncsort/config"
	"github.com/crillab/ncsort/gateway"
	"github.com/crillab/ncsort/learner"
	"github.com/crillab/ncsort/metrics"
	"github.com/crillab/ncsort/ncs"
)

type learnOptions struct {
	datasets    []string
	variant     string
	output      string
	explain     bool
	metricsFile string
	jobs        int
}

func (o *learnOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&o.datasets, "data", "d", nil, "Dataset file (repeatable)")
	fs.StringVar(&o.variant, "variant", ncs.ThresholdExact.String(), "Learning variant: threshold, threshold-relaxed, interval or interval-relaxed")
	fs.StringVarP(&o.output, "output", "o", "", "Model file, or output directory when several datasets are given")
	fs.BoolVar(&o.explain, "explain", false, "List the conflicting examples when no model is consistent")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "Write metrics to this file in the Prometheus text format")
	fs.IntVar(&o.jobs, "jobs", 0, "Max number of datasets learned at once (0: no limit)")
}

func newLearnCmd(global *globalOptions) *cobra.Command {
	o := &learnOptions{}
	cmd := &cobra.Command{
		Use:   "learn -d dataset.yaml [-d dataset.yaml...]",
		Short: "Learn a sorting model from each dataset",
		Long: `Learn a sorting model from each dataset.

With a single dataset, the model is written to --output (stdout by default).
With several datasets, they are learned concurrently and each model is written
to <output>/<dataset name>.model.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := global.setup(cmd)
			if err != nil {
				return err
			}
			if len(o.datasets) == 0 {
				return ncs.Configurationf("no dataset given")
			}
			variant, err := ncs.ParseVariant(o.variant)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("explain") {
				cfg.Explain = o.explain
			}
			if o.metricsFile != "" {
				cfg.MetricsFile = o.metricsFile
			}
			if cmd.Flags().Changed("jobs") {
				cfg.Jobs = o.jobs
			}
			return o.run(cmd, cfg, logger, variant)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

func (o *learnOptions) run(cmd *cobra.Command, cfg config.Config, logger *logrus.Logger, variant ncs.Variant) error {
	dims := make(map[string]ncs.Dimensions, len(o.datasets))
	jobs := make([]learner.Job, len(o.datasets))
	for i, path := range o.datasets {
		d, ds, err := readDataset(path)
		if err != nil {
			return err
		}
		dims[path] = d
		jobs[i] = learner.Job{Name: path, Variant: variant, Dataset: ds}
	}

	gw, err := cfg.NewGateway(logger)
	if err != nil {
		return err
	}
	m := metrics.New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		return err
	}
	gw = gateway.NewInstrumented(gw,
		m.SolveEmitter(cfg.Solver.Engine, metrics.Succeeded),
		m.SolveEmitter(cfg.Solver.Engine, metrics.Failed),
	)
	factory := func(job learner.Job) (*learner.Learner, error) {
		return learner.New(dims[job.Name], job.Variant, gw,
			learner.WithLogger(logger.WithField("dataset", job.Name)),
			learner.WithLimits(cfg.ClauseLimits()),
			learner.WithExplain(cfg.Explain),
			learner.WithMetrics(m),
		)
	}

	ctx, cancel := commandContext(cmd, cfg)
	defer cancel()
	outcomes, err := learner.SolveAll(ctx, jobs, factory, cfg.Jobs)
	if err != nil {
		return err
	}

	many := len(o.datasets) > 1
	if many && o.output != "" {
		if err := os.MkdirAll(o.output, 0o755); err != nil {
			return errors.Wrap(err, "could not create output directory")
		}
	}
	var failed int
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			logger.WithField("dataset", outcome.Job.Name).WithError(outcome.Err).Error("could not learn model")
			continue
		}
		if many && o.output == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "---")
		}
		if err := writeOutput(cmd.OutOrStdout(), modelPath(outcome.Job.Name, o.output, many), func(w io.Writer) error {
			return ncs.WriteModel(w, outcome.Model)
		}); err != nil {
			return err
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteToTextfile(reg, cfg.MetricsFile); err != nil {
			return errors.Wrap(err, "could not write metrics")
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d datasets could not be learned", failed, len(outcomes))
	}
	return nil
}

// modelPath returns the file the model learned from dataset is written to.
// Models of several datasets sharing stdout are separated by YAML document markers.
func modelPath(dataset, output string, many bool) string {
	if !many || output == "" {
		return output
	}
	name := strings.TrimSuffix(filepath.Base(dataset), filepath.Ext(dataset))
	return filepath.Join(output, name+".model.yaml")
}
