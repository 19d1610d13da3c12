package cmd

import (
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crillab/ncsort/generator"
	"github.com/crillab/ncsort/ncs"
)

type generateOptions struct {
	criteria    int
	categories  int
	maxGrade    int
	shape       string
	examples    int
	noise       float64
	seed        int64
	output      string
	modelOutput string
}

func (o *generateOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.criteria, "criteria", 4, "Number of criteria")
	fs.IntVar(&o.categories, "categories", 2, "Number of categories above category 0")
	fs.IntVar(&o.maxGrade, "max-grade", 10, "Highest grade")
	fs.StringVar(&o.shape, "shape", "threshold", "Shape of the model profiles: threshold or interval")
	fs.IntVar(&o.examples, "examples", 100, "Number of examples")
	fs.Float64Var(&o.noise, "noise", 0, "Probability for an example to be moved to a wrong category")
	fs.Int64Var(&o.seed, "seed", 0, "Random seed (random by default)")
	fs.StringVarP(&o.output, "output", "o", "", "Dataset file (stdout by default)")
	fs.StringVar(&o.modelOutput, "model-output", "", "Also write the model sorting the examples to this file")
}

func newGenerateCmd() *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset sorted by a random model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := ncs.ParseVariant(o.shape)
			if err != nil || variant.Relaxed {
				return ncs.Configurationf("unknown shape %q", o.shape)
			}
			if o.noise < 0 || o.noise > 1 {
				return ncs.Configurationf("noise must be in [0, 1], got %v", o.noise)
			}
			seed := o.seed
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))
			dims := ncs.Dimensions{Criteria: o.criteria, Categories: o.categories, MaxGrade: ncs.Grade(o.maxGrade)}
			m, err := generator.RandomModel(rng, dims, variant.Shape)
			if err != nil {
				return err
			}
			ds, _ := generator.New(rng, m).GenerateNoisy(o.examples, o.noise)
			if o.modelOutput != "" {
				if err := writeOutput(cmd.OutOrStdout(), o.modelOutput, func(w io.Writer) error {
					return ncs.WriteModel(w, m)
				}); err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), o.output, func(w io.Writer) error {
				return ncs.WriteDataset(w, dims, ds)
			})
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}
