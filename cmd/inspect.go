package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/gateway"
)

func newInspectCmd(global *globalOptions) *cobra.Command {
	var solve bool
	cmd := &cobra.Command{
		Use:   "inspect file.cnf",
		Short: "Describe a clause file, and optionally solve it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := global.setup(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "could not open clause file")
			}
			defer f.Close()
			h, err := dimacs.ParseHeader(f)
			if err != nil {
				return err
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return errors.Wrap(err, "could not rewind clause file")
			}
			pb, err := dimacs.Parse(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "c format %s\n", h.Format)
			fmt.Fprintf(out, "c %d vars\n", pb.NbVars)
			fmt.Fprintf(out, "c %d hard clauses\n", len(pb.Clauses))
			if pb.Weighted {
				fmt.Fprintf(out, "c %d soft clauses, top weight %d\n", len(pb.Soft), h.Top)
			}
			if !solve {
				return nil
			}
			gw, err := cfg.NewGateway(logger)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cfg)
			defer cancel()
			res, err := gw.Solve(ctx, pb)
			if err != nil {
				return err
			}
			printResult(out, pb, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&solve, "solve", false, "Solve the instance with the configured engine")
	return cmd
}

// printResult writes res the way engines report it.
func printResult(w io.Writer, pb *dimacs.Problem, res gateway.Result) {
	if pb.Weighted && res.Status == gateway.Optimum {
		fmt.Fprintf(w, "o %d\n", res.Cost)
	}
	fmt.Fprintf(w, "s %s\n", res.Status)
	if res.Status == gateway.Sat || res.Status == gateway.Optimum {
		fmt.Fprintf(w, "v %s 0\n", res.Model)
	}
}
