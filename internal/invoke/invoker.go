// Package invoke implements the sequential Lambda invocation pass over the
// nook stack's retriever functions.
//
// Each function is invoked synchronously, in list order, with the same fixed
// payload the scheduler would deliver, so every function behaves exactly as
// it does under its normal EventBridge trigger. Responses are written to
// per-function temp files for inspection and echoed to stdout. The first
// failed invocation aborts the remaining ones.
package invoke

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"nookops/internal/types"
)

// EventPayload is the constant invocation payload. It mimics the envelope
// source field of a scheduled EventBridge event, which is all the retriever
// handlers look at.
const EventPayload = `{"source": "aws.events"}`

// invokeTimeout is the per-invocation timeout. The retriever functions are
// deployed with a 15 minute Lambda timeout, so the client-side bound matches
// it rather than the SDK default.
const invokeTimeout = 15 * time.Minute

// FunctionClient defines the subset of the Lambda API required by the invoke
// tool. This interface enables unit testing with mocks without requiring a
// live AWS connection.
type FunctionClient interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// InvokerConfig holds the dependencies for an Invoker.
type InvokerConfig struct {
	// Client is the Lambda client (or a mock in tests).
	Client FunctionClient

	// Functions is the ordered list of function names to invoke.
	Functions []string

	// Viewer is the informational-only function named in the closing
	// reminder. It is never invoked.
	Viewer string

	// Pause is the fixed pause between invocations.
	Pause time.Duration

	// Logger is the structured logger for the pass.
	Logger *slog.Logger

	// Stdout receives the response bodies and the closing reminder.
	// Nil uses os.Stdout.
	Stdout io.Writer

	// TempDir is the directory for per-function response files. Empty uses
	// the OS default temp directory.
	TempDir string

	// Sleep overrides the wait primitive. Nil uses a context-aware sleep.
	// Intended for testing.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Invoker executes sequential invocation passes.
type Invoker struct {
	client    FunctionClient
	functions []string
	viewer    string
	pause     time.Duration
	logger    *slog.Logger
	stdout    io.Writer
	tempDir   string
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewInvoker creates an Invoker from the given configuration.
func NewInvoker(cfg InvokerConfig) *Invoker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Invoker{
		client:    cfg.Client,
		functions: cfg.Functions,
		viewer:    cfg.Viewer,
		pause:     cfg.Pause,
		logger:    logger,
		stdout:    stdout,
		tempDir:   cfg.TempDir,
		sleep:     sleep,
	}
}

// Run invokes every configured function in order, each with the constant
// EventPayload, and surfaces each response before moving to the next.
//
// A provider rejection or a function-reported error aborts the remaining
// invocations immediately. An absent response body is only a diagnostic,
// not a failure. Between invocations Run pauses for the configured interval
// as a coarse rate-limiting measure.
//
// After the last function, Run prints a reminder that the viewer function is
// deliberately excluded from the list and must be triggered manually.
func (iv *Invoker) Run(ctx context.Context) error {
	for i, name := range iv.functions {
		iv.logger.Info("invoking function",
			"function", name,
			"position", fmt.Sprintf("%d/%d", i+1, len(iv.functions)),
		)

		if err := iv.invokeOne(ctx, name); err != nil {
			return err
		}

		if err := iv.sleep(ctx, iv.pause); err != nil {
			return err
		}
	}

	if iv.viewer != "" {
		fmt.Fprintf(iv.stdout, "NOTE: %s is not invoked automatically; trigger it manually if you want to refresh it.\n", iv.viewer)
	}

	return nil
}

// invokeOne performs a single synchronous invocation and surfaces the
// response body.
func (iv *Invoker) invokeOne(ctx context.Context, name string) error {
	opCtx, cancel := context.WithTimeout(ctx, invokeTimeout)
	defer cancel()

	out, err := iv.client.Invoke(opCtx, &lambda.InvokeInput{
		FunctionName:   aws.String(name),
		InvocationType: lambdatypes.InvocationTypeRequestResponse,
		Payload:        []byte(EventPayload),
	})
	if err != nil {
		return types.NewOpError(types.ErrCodeInvoke, name, err)
	}

	// A FunctionError means the invocation was accepted but the function
	// itself failed; the payload then holds the error document. Treat it
	// the same as a provider rejection.
	if out.FunctionError != nil {
		return types.NewOpError(types.ErrCodeInvoke, name,
			fmt.Errorf("function error %q: %s", aws.ToString(out.FunctionError), out.Payload))
	}

	if len(out.Payload) == 0 {
		fmt.Fprintf(iv.stdout, "%s: no response body returned\n", name)
		iv.logger.Warn("no response body returned", "function", name)
		return nil
	}

	path, err := iv.writeResponse(name, out.Payload)
	if err != nil {
		// The response was still received; losing the file copy is not
		// worth aborting the pass over.
		iv.logger.Warn("failed to write response file",
			"function", name,
			"error", err,
		)
	} else {
		iv.logger.Info("response written",
			"function", name,
			"path", path,
			"bytes", len(out.Payload),
		)
	}

	fmt.Fprintf(iv.stdout, "%s\n", out.Payload)
	return nil
}

// writeResponse stores a response body in a per-function temp file and
// returns its path.
func (iv *Invoker) writeResponse(name string, payload []byte) (string, error) {
	f, err := os.CreateTemp(iv.tempDir, "nookops-"+name+"-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(payload); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// sleepContext blocks for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
