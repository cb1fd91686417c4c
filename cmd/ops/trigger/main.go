// Package main implements the trigger CLI tool for the nook stack.
//
// The tool forces every configured EventBridge rule to fire once, about one
// minute from now, and then puts the original schedules back:
//
//  1. Reads each rule's current schedule expression (fail fast on the first
//     lookup error; nothing has been changed yet).
//  2. Overwrites each rule with a one-shot cron expression for now+1m UTC
//     (fail fast on the first rejection).
//  3. Waits for the fire window (60s by default).
//  4. Restores each rule's original expression, best-effort per rule.
//
// Usage:
//
//	go run ./cmd/ops/trigger
//	go run ./cmd/ops/trigger --dry-run
//	go run ./cmd/ops/trigger --profile=nook-prod --region=us-east-1
//
// The rule list and wait durations come from the environment (see
// internal/config); the defaults match the deployed stack, so the tool runs
// with zero arguments. Exit code 0 only if every rule was restored.
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
	"time"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/uuid"

	"nookops/internal/awsx"
	"nookops/internal/config"
	"nookops/internal/schedule"
	"nookops/internal/types"
)

func main() {
	profileFlag := flag.String("profile", "", "AWS CLI profile (default: uses default credential chain)")
	regionFlag := flag.String("region", "", "AWS region (default: AWS_REGION / config default)")
	envFileFlag := flag.String("env-file", "", "Path to a dotenv file (default: .env if present)")
	dryRunFlag := flag.Bool("dry-run", false, "Print the planned schedule changes without calling AWS")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: trigger [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Force the nook stack's scheduled rules to fire once, then restore\n")
		fmt.Fprintf(os.Stderr, "their original schedules.\n\n")
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

	// A run id ties together the log lines of one pass; the capture, force,
	// and restore phases of a single run can be minutes apart in the log.
	logger = logger.With("run_id", uuid.New().String())

	if *dryRunFlag {
		printPlan(os.Stdout, cfg, time.Now().UTC())
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

	runner := schedule.NewRunner(schedule.RunnerConfig{
		Client:   eventbridge.NewFromConfig(sess.Config),
		Rules:    cfg.RuleNames,
		FireWait: cfg.FireWait,
		Logger:   logger,
	})

	results, runErr := runner.Run(ctx)
	reportResults(logger, results)

	if runErr != nil {
		var opErr *types.OpError
		if errors.As(runErr, &opErr) {
			logger.Error("trigger pass failed",
				"code", string(opErr.Code),
				"rule", opErr.Resource,
				"error", runErr,
			)
		} else {
			logger.Error("trigger pass failed", "error", runErr)
		}
		os.Exit(1)
	}

	logger.Info("trigger pass completed, all schedules restored",
		"rules", len(results),
	)
}

// printPlan writes the rules that would be touched and the one-shot
// expression that would be applied, without any AWS calls.
func printPlan(w io.Writer, cfg *config.Config, now time.Time) {
	forced := schedule.OneShotCron(now.Add(time.Minute))

	fmt.Fprintf(w, "Would apply %s to %d rule(s), wait %s, then restore:\n",
		forced, len(cfg.RuleNames), cfg.FireWait)
	for _, name := range cfg.RuleNames {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

// reportResults logs one line per rule with its captured original and final
// lifecycle state.
func reportResults(logger *slog.Logger, results []schedule.RuleResult) {
	for _, res := range results {
		logger.Info("rule result",
			"rule", res.Name,
			"original_expression", res.Original,
			"state", string(res.State),
		)
	}
}

// newLogger builds the structured logger for the CLI. Output goes to stderr
// so stdout stays clean for machine-readable output like --dry-run plans.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}
