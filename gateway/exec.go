package gateway

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/ncs"
)

// Exit codes of SAT engines that report a verdict rather than a failure.
const (
	exitSat   = 10
	exitUnsat = 20
)

// waitDelay bounds how long an interrupted engine may keep its output open.
const waitDelay = 5 * time.Second

// Exec is a Gateway running an external gophersat-compatible engine.
//
// For each call to Solve, the problem is written to a new clause file, the engine is run
// synchronously with the path of that file as its last argument, and its standard output is
// parsed with ParseOutput. The clause file is removed before Solve returns, whatever the outcome.
// Independent calls never share a clause file, so an Exec can be used concurrently.
type Exec struct {
	path    string
	args    []string
	tempDir string
	logger  logrus.FieldLogger
}

// An ExecOption configures an Exec.
type ExecOption func(*Exec)

// WithArgs adds arguments passed to the engine before the path of the clause file.
func WithArgs(args ...string) ExecOption {
	return func(e *Exec) {
		e.args = append(e.args, args...)
	}
}

// WithTempDir sets the directory clause files are created in.
func WithTempDir(dir string) ExecOption {
	return func(e *Exec) {
		e.tempDir = dir
	}
}

// WithExecLogger sets the logger the gateway reports engine runs to.
func WithExecLogger(logger logrus.FieldLogger) ExecOption {
	return func(e *Exec) {
		e.logger = logger
	}
}

// NewExec returns a gateway running the engine at path, or found as path in the PATH.
func NewExec(path string, opts ...ExecOption) *Exec {
	e := &Exec{path: path, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Solve implements Gateway.
func (e *Exec) Solve(ctx context.Context, pb *dimacs.Problem) (Result, error) {
	bin, err := exec.LookPath(e.path)
	if err != nil {
		return Result{}, &ncs.SolverUnavailable{Path: e.path, Err: err}
	}
	f, err := createClauseFile(e.tempDir, pb.Ext())
	if err != nil {
		return Result{}, &ncs.SolverError{Reason: "could not prepare instance", Err: err}
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.logger.WithError(err).WithField("file", path).Warn("could not remove clause file")
		}
	}()
	if err := dimacs.Write(f, pb, "ncsort instance"); err != nil {
		_ = f.Close()
		return Result{}, &ncs.SolverError{Reason: "could not write instance", Err: err}
	}
	if err := f.Close(); err != nil {
		return Result{}, &ncs.SolverError{Reason: "could not write instance", Err: errors.WithStack(err)}
	}

	logger := e.logger.WithFields(logrus.Fields{
		"solver":  bin,
		"file":    path,
		"vars":    pb.NbVars,
		"clauses": pb.NbClauses(),
	})
	args := append(append([]string(nil), e.args...), path)
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	logger.Debug("running solver")
	start := time.Now()
	err = cmd.Run()
	logger = logger.WithField("duration", time.Since(start))
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.WithError(ctxErr).Info("solver interrupted")
		return Result{}, &ncs.SolverError{Reason: "solver interrupted", Err: ctxErr}
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, &ncs.SolverUnavailable{Path: bin, Err: err}
		}
		if code := exitErr.ExitCode(); code != exitSat && code != exitUnsat {
			logger.WithField("code", code).Warn("solver failed")
			return Result{}, &ncs.SolverError{
				Reason: fmt.Sprintf("solver exited with code %d: %s", code, strings.TrimSpace(stderr.String())),
				Err:    err,
			}
		}
	}
	res, err := ParseOutput(&stdout, pb.Weighted, pb.NbVars)
	if err != nil {
		logger.WithError(err).Warn("could not parse solver output")
		return Result{}, err
	}
	logger.WithFields(logrus.Fields{"status": res.Status, "cost": res.Cost}).Debug("solver done")
	return res, nil
}
