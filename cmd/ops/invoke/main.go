// Package main implements the invoke CLI tool for the nook stack.
//
// The tool synchronously invokes each configured retriever function with the
// same payload EventBridge would deliver on schedule, prints each response,
// and pauses briefly between calls. The viewer function is never invoked
// automatically; a reminder to trigger it manually is printed at the end.
//
// Usage:
//
//	go run ./cmd/ops/invoke
//	go run ./cmd/ops/invoke --dry-run
//	go run ./cmd/ops/invoke --profile=nook-prod --region=us-east-1
//
// The function list comes from the environment (see internal/config); the
// defaults match the deployed stack, so the tool runs with zero arguments.
// The first failed invocation aborts the remaining ones with a non-zero
// exit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/google/uuid"

	"nookops/internal/awsx"
	"nookops/internal/config"
	"nookops/internal/invoke"
	"nookops/internal/types"
)

func main() {
	profileFlag := flag.String("profile", "", "AWS CLI profile (default: uses default credential chain)")
	regionFlag := flag.String("region", "", "AWS region (default: AWS_REGION / config default)")
	envFileFlag := flag.String("env-file", "", "Path to a dotenv file (default: .env if present)")
	dryRunFlag := flag.Bool("dry-run", false, "Print the invocation plan without calling AWS")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: invoke [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Invoke the nook stack's retriever functions one by one with the\n")
		fmt.Fprintf(os.Stderr, "scheduled-event payload and print their responses.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg, err := config.Load(*envFileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *regionFlag != "" {
		cfg.Region = *regionFlag
	}

	logger := newLogger(cfg.LogLevel)
	logger = logger.With("run_id", uuid.New().String())

	if *dryRunFlag {
		printPlan(os.Stdout, cfg)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess, err := awsx.Open(ctx, awsx.Options{
		Region:  cfg.Region,
		Profile: *profileFlag,
	}, logger)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}

	invoker := invoke.NewInvoker(invoke.InvokerConfig{
		Client:    lambda.NewFromConfig(sess.Config),
		Functions: cfg.FunctionNames,
		Viewer:    cfg.ViewerFunction,
		Pause:     cfg.InvokePause,
		Logger:    logger,
	})

	if err := invoker.Run(ctx); err != nil {
		var opErr *types.OpError
		if errors.As(err, &opErr) {
			logger.Error("invocation pass failed",
				"code", string(opErr.Code),
				"function", opErr.Resource,
				"error", err,
			)
		} else {
			logger.Error("invocation pass failed", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("invocation pass completed",
		"functions", len(cfg.FunctionNames),
	)
}

// printPlan writes the invocation order and payload without any AWS calls.
func printPlan(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Would invoke %d function(s) with payload %s, pausing %s between calls:\n",
		len(cfg.FunctionNames), invoke.EventPayload, cfg.InvokePause)
	for _, name := range cfg.FunctionNames {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintf(w, "Excluded (manual only): %s\n", cfg.ViewerFunction)
}

// newLogger builds the structured logger for the CLI. Output goes to stderr
// so stdout stays clean for the function responses.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}
