package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/compute/apiv1/computepb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
)

// DefaultOperationTimeout bounds how long we wait on a single long-running
// compute operation.
const DefaultOperationTimeout = 300 * time.Second

// Operation is the subset of *compute.Operation the waiter needs.
type Operation interface {
	Wait(ctx context.Context, opts ...gax.CallOption) error
	Proto() *computepb.Operation
	Name() string
}

// OperationError carries the provider-reported failure of a completed
// operation.
type OperationError struct {
	Op      string
	Code    string
	Message string
}

func (e *OperationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("operation %s failed: [%s] %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("operation %s failed: %s", e.Op, e.Message)
}

// waitForOperation blocks until op resolves, the timeout elapses, or ctx is
// canceled. Wait failures and provider-attached errors are logged and
// returned; warnings are logged and swallowed.
func waitForOperation(ctx context.Context, logger zerolog.Logger, op Operation, verboseName string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := op.Wait(ctx); err != nil {
		logger.Error().
			Err(err).
			Str("operation", verboseName).
			Msg("operation wait failed")
		return fmt.Errorf("%s: %w", verboseName, err)
	}

	proto := op.Proto()

	if opErr := proto.GetError(); opErr != nil || proto.GetHttpErrorStatusCode() != 0 {
		code := fmt.Sprintf("%d", proto.GetHttpErrorStatusCode())
		message := proto.GetHttpErrorMessage()
		if opErr != nil && len(opErr.GetErrors()) > 0 {
			first := opErr.GetErrors()[0]
			code = first.GetCode()
			message = first.GetMessage()
		}
		logger.Error().
			Str("operation", verboseName).
			Str("operation_id", proto.GetName()).
			Str("code", code).
			Str("message", message).
			Msg("operation completed with error")
		return &OperationError{Op: proto.GetName(), Code: code, Message: message}
	}

	for _, w := range proto.GetWarnings() {
		logger.Warn().
			Str("operation", verboseName).
			Str("code", w.GetCode()).
			Str("message", w.GetMessage()).
			Msg("operation warning")
	}

	return nil
}
