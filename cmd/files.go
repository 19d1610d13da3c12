package cmd

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/crillab/ncsort/config"
	"github.com/crillab/ncsort/ncs"
)

// commandContext returns the context of cmd, bounded by the configured timeout if any.
func commandContext(cmd *cobra.Command, cfg config.Config) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Solver.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Solver.Timeout)
	}
	return context.WithCancel(ctx)
}

func readDataset(path string) (ncs.Dimensions, ncs.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return ncs.Dimensions{}, nil, errors.Wrap(err, "could not open dataset")
	}
	defer f.Close()
	dims, ds, err := ncs.ReadDataset(f)
	if err != nil {
		return ncs.Dimensions{}, nil, errors.Wrapf(err, "dataset %s", path)
	}
	return dims, ds, nil
}

func readModel(path string) (*ncs.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open model")
	}
	defer f.Close()
	m, err := ncs.ReadModel(f)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", path)
	}
	return m, nil
}

// writeOutput calls write on the file at path, or on stdout if path is empty or "-".
func writeOutput(stdout io.Writer, path string, write func(w io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create output file")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
