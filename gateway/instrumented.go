package gateway

import (
	"context"
	"time"

	"github.com/crillab/ncsort/dimacs"
)

// Instrumented is a Gateway reporting the duration of each call to another Gateway.
// A call is a success if it returns no error, whatever the verdict.
type Instrumented struct {
	gateway               Gateway
	successMetricsEmitter func(time.Duration)
	failureMetricsEmitter func(time.Duration)
}

var _ Gateway = &Instrumented{}

// NewInstrumented returns a gateway calling gateway and reporting to the given emitters.
func NewInstrumented(gateway Gateway, successMetricsEmitter, failureMetricsEmitter func(time.Duration)) *Instrumented {
	return &Instrumented{
		gateway:               gateway,
		successMetricsEmitter: successMetricsEmitter,
		failureMetricsEmitter: failureMetricsEmitter,
	}
}

// Solve implements Gateway.
func (ig *Instrumented) Solve(ctx context.Context, pb *dimacs.Problem) (Result, error) {
	start := time.Now()
	res, err := ig.gateway.Solve(ctx, pb)
	if err != nil {
		ig.failureMetricsEmitter(time.Since(start))
	} else {
		ig.successMetricsEmitter(time.Since(start))
	}
	return res, err
}
