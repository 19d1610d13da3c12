package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crillab/ncsort/ncs"
)

func newClassifyCmd() *cobra.Command {
	var modelPath string
	cmd := &cobra.Command{
		Use:   "classify -m model.yaml grade...",
		Short: "Sort a grade vector with a learned model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readModel(modelPath)
			if err != nil {
				return err
			}
			if len(args) != m.Dimensions.Criteria {
				return ncs.Configurationf("got %d grades, model has %d criteria", len(args), m.Dimensions.Criteria)
			}
			grades := make([]ncs.Grade, len(args))
			for i, arg := range args {
				g, err := strconv.Atoi(arg)
				if err != nil {
					return ncs.Configurationf("grade %q is not an integer", arg)
				}
				if g < 0 || ncs.Grade(g) > m.Dimensions.MaxGrade {
					return ncs.Configurationf("grade %d out of range [0, %d]", g, m.Dimensions.MaxGrade)
				}
				grades[i] = ncs.Grade(g)
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Classify(grades))
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model file")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
