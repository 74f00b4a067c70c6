package gcp

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/compute/apiv1/computepb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

// fakeOperation implements Operation for waiter tests.
type fakeOperation struct {
	waitErr error
	proto   *computepb.Operation
	waited  bool
}

func (f *fakeOperation) Wait(ctx context.Context, opts ...gax.CallOption) error {
	f.waited = true
	if f.waitErr != nil {
		return f.waitErr
	}
	return ctx.Err()
}

func (f *fakeOperation) Proto() *computepb.Operation {
	if f.proto == nil {
		return &computepb.Operation{}
	}
	return f.proto
}

func (f *fakeOperation) Name() string { return f.Proto().GetName() }

func TestWaitForOperation_Success(t *testing.T) {
	op := &fakeOperation{proto: &computepb.Operation{Name: proto.String("op-1")}}

	err := waitForOperation(context.Background(), zerolog.Nop(), op, "test operation", time.Second)
	require.NoError(t, err)
	assert.True(t, op.waited)
}

func TestWaitForOperation_WaitErrorPropagates(t *testing.T) {
	waitErr := errors.New("deadline exceeded")
	op := &fakeOperation{waitErr: waitErr}

	err := waitForOperation(context.Background(), zerolog.Nop(), op, "slow operation", time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, waitErr)
	assert.Contains(t, err.Error(), "slow operation")
}

func TestWaitForOperation_ProviderError(t *testing.T) {
	op := &fakeOperation{
		proto: &computepb.Operation{
			Name:                proto.String("op-failed-42"),
			HttpErrorStatusCode: proto.Int32(409),
			HttpErrorMessage:    proto.String("already exists"),
			Error: &computepb.Error{
				Errors: []*computepb.Errors{
					{
						Code:    proto.String("RESOURCE_ALREADY_EXISTS"),
						Message: proto.String("the snapshot already exists"),
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	err := waitForOperation(context.Background(), logger, op, "snapshot creation for d1", time.Second)
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "op-failed-42", opErr.Op)
	assert.Equal(t, "RESOURCE_ALREADY_EXISTS", opErr.Code)
	assert.Equal(t, "the snapshot already exists", opErr.Message)

	// Code, message and operation id all end up in the log.
	logged := buf.String()
	assert.Contains(t, logged, "RESOURCE_ALREADY_EXISTS")
	assert.Contains(t, logged, "the snapshot already exists")
	assert.Contains(t, logged, "op-failed-42")
}

func TestWaitForOperation_HTTPErrorWithoutErrorPayload(t *testing.T) {
	op := &fakeOperation{
		proto: &computepb.Operation{
			Name:                proto.String("op-http"),
			HttpErrorStatusCode: proto.Int32(503),
			HttpErrorMessage:    proto.String("backend unavailable"),
		},
	}

	err := waitForOperation(context.Background(), zerolog.Nop(), op, "snapshot creation for d2", time.Second)
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "503", opErr.Code)
	assert.Equal(t, "backend unavailable", opErr.Message)
}

func TestWaitForOperation_WarningsAreNonFatal(t *testing.T) {
	op := &fakeOperation{
		proto: &computepb.Operation{
			Name: proto.String("op-warn"),
			Warnings: []*computepb.Warnings{
				{Code: proto.String("DEPRECATED_RESOURCE_USED"), Message: proto.String("disk type is deprecated")},
				{Code: proto.String("NO_RESULTS_ON_PAGE"), Message: proto.String("empty page")},
			},
		},
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	err := waitForOperation(context.Background(), logger, op, "test operation", time.Second)
	require.NoError(t, err)

	logged := buf.String()
	assert.Contains(t, logged, "DEPRECATED_RESOURCE_USED")
	assert.Contains(t, logged, "disk type is deprecated")
	assert.Contains(t, logged, "NO_RESULTS_ON_PAGE")
}

func TestWaitForOperation_DefaultTimeoutApplied(t *testing.T) {
	// A zero timeout falls back to the default instead of an immediate
	// deadline.
	op := &fakeOperation{proto: &computepb.Operation{}}

	err := waitForOperation(context.Background(), zerolog.Nop(), op, "test operation", 0)
	require.NoError(t, err)
}
