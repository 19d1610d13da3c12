package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crillab/ncsort/clause"
	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/learner"
	"github.com/crillab/ncsort/ncs"
)

type encodeOptions struct {
	dataset  string
	variant  string
	output   string
	describe bool
}

func (o *encodeOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.dataset, "data", "d", "", "Dataset file")
	fs.StringVar(&o.variant, "variant", ncs.ThresholdExact.String(), "Learning variant: threshold, threshold-relaxed, interval or interval-relaxed")
	fs.StringVarP(&o.output, "output", "o", "", "Clause file (stdout by default)")
	fs.BoolVar(&o.describe, "describe", false, "List the meaning of each variable in comments")
}

func newEncodeCmd(global *globalOptions) *cobra.Command {
	o := &encodeOptions{}
	cmd := &cobra.Command{
		Use:   "encode -d dataset.yaml",
		Short: "Write the clauses a learner would hand to the engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := global.setup(cmd)
			if err != nil {
				return err
			}
			variant, err := ncs.ParseVariant(o.variant)
			if err != nil {
				return err
			}
			dims, ds, err := readDataset(o.dataset)
			if err != nil {
				return err
			}
			ix, f, err := learner.Encode(dims, variant, ds, cfg.ClauseLimits())
			if err != nil {
				return err
			}

			comments := []string{fmt.Sprintf("ncsort %s encoding of %s (%s)", variant, o.dataset, dims)}
			for fam := clause.GradeMonotonicity; fam <= clause.Floor; fam++ {
				comments = append(comments, fmt.Sprintf("%d %s clauses", f.Count(fam), fam))
			}
			if variant.Relaxed {
				comments = append(comments, fmt.Sprintf("%d goals", len(f.Goals)))
			}
			if o.describe {
				for id := 1; id <= ix.NbVars(); id++ {
					v, _ := ix.Var(id)
					comments = append(comments, fmt.Sprintf("%d %s", id, v))
				}
			}
			logger.WithField("vars", f.Problem.NbVars).WithField("clauses", f.Problem.NbClauses()).Info("instance encoded")
			return writeOutput(cmd.OutOrStdout(), o.output, func(w io.Writer) error {
				return dimacs.Write(w, f.Problem, comments...)
			})
		},
	}
	o.AddFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
