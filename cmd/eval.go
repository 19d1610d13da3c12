package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crillab/ncsort/ncs"
)

func newEvalCmd() *cobra.Command {
	var (
		modelPath string
		dataPath  string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "eval -m model.yaml -d dataset.yaml",
		Short: "Measure how well a model sorts a labeled dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readModel(modelPath)
			if err != nil {
				return err
			}
			dims, ds, err := readDataset(dataPath)
			if err != nil {
				return err
			}
			if dims != m.Dimensions {
				return ncs.Configurationf("dataset has dimensions %s, model has %s", dims, m.Dimensions)
			}
			ev := ncs.Evaluate(m, ds)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "accuracy: %.4f (%d/%d)\n", ev.Accuracy(), ev.Correct, ev.Total)
			fmt.Fprintf(out, "macro F1: %.4f\n", ev.MacroF1())
			fmt.Fprintln(out, "confusion (rows: expected, columns: got):")
			for h, row := range ev.Confusion {
				cells := make([]string, len(row))
				for j, nb := range row {
					cells[j] = fmt.Sprintf("%5d", nb)
				}
				fmt.Fprintf(out, "%3d %s\n", h, strings.Join(cells, " "))
			}
			if verbose {
				for _, ref := range ncs.Misclassified(m, ds) {
					fmt.Fprintf(out, "misclassified %s\n", ref)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model file")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Dataset file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List misclassified examples")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
