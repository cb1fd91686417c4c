// Package schedule implements the trigger-and-restore pass over the nook
// stack's EventBridge rules.
//
// A pass walks a fixed ordered list of rule names three times: first it
// captures every rule's current schedule expression, then it overwrites each
// with a one-shot cron expression firing one minute from the run start, and
// after a fixed wait it restores every captured original. Capture and force
// failures abort the run immediately; restore failures are reported per rule
// but do not stop the remaining restores, so one bad rule cannot leave the
// rest stuck on the forced schedule.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"nookops/internal/types"
)

// ruleOperationTimeout is the per-operation timeout for EventBridge API
// calls.
const ruleOperationTimeout = 15 * time.Second

// RuleClient defines the subset of the EventBridge API required by the
// trigger tool. This interface enables unit testing with mocks without
// requiring a live AWS connection.
type RuleClient interface {
	DescribeRule(ctx context.Context, params *eventbridge.DescribeRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.DescribeRuleOutput, error)
	PutRule(ctx context.Context, params *eventbridge.PutRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutRuleOutput, error)
}

// RuleResult reports the outcome of a single rule after a pass. Results are
// returned in list order.
type RuleResult struct {
	// Name is the rule name.
	Name string

	// Original is the schedule expression captured before the rule was
	// touched. Empty if the capture itself failed.
	Original string

	// State is the rule's final lifecycle state.
	State types.RuleState
}

// capturedRule holds everything needed to restore a rule after the forced
// fire. PutRule replaces the whole rule definition, so the attributes beyond
// the schedule expression are carried through from the describe output
// rather than being dropped on restore.
type capturedRule struct {
	name         string
	expression   string
	description  *string
	state        ebtypes.RuleState
	roleArn      *string
	eventBusName *string

	lifecycle types.RuleState
}

// RunnerConfig holds the dependencies for a Runner.
type RunnerConfig struct {
	// Client is the EventBridge client (or a mock in tests).
	Client RuleClient

	// Rules is the ordered list of rule names to trigger and restore.
	Rules []string

	// FireWait is how long to block between forcing the one-shot schedules
	// and restoring the originals.
	FireWait time.Duration

	// Logger is the structured logger for the pass.
	Logger *slog.Logger

	// Now overrides the clock. Nil uses time.Now. Intended for testing.
	Now func() time.Time

	// Sleep overrides the wait primitive. Nil uses a context-aware sleep.
	// Intended for testing.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Runner executes trigger-and-restore passes.
type Runner struct {
	client RuleClient
	rules  []string
	wait   time.Duration
	logger *slog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a Runner from the given configuration.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Runner{
		client: cfg.Client,
		rules:  cfg.Rules,
		wait:   cfg.FireWait,
		logger: logger,
		now:    now,
		sleep:  sleep,
	}
}

// Run executes one trigger-and-restore pass:
//
//  1. Capture: read every rule's current schedule expression, in list order.
//     A missing rule or provider error aborts the run; nothing has been
//     changed yet, so there is nothing to roll back.
//  2. Force: overwrite every rule's schedule with a one-shot cron expression
//     firing one minute after the run start. A provider rejection aborts the
//     run, leaving any already-forced rules temporarily on the forced
//     schedule.
//  3. Wait: block for the configured window so the provider's scheduler can
//     fire each rule once.
//  4. Restore: write every captured original back, in the same order.
//     Restore failures are reported per rule but do not stop the remaining
//     restores; Run returns the joined restore errors so the process still
//     exits non-zero.
//
// The returned results report each rule's final lifecycle state in list
// order, including partial progress when Run returns an error.
func (r *Runner) Run(ctx context.Context) ([]RuleResult, error) {
	start := r.now().UTC()

	captured, err := r.captureAll(ctx)
	if err != nil {
		return results(captured, r.rules), err
	}

	forced := OneShotCron(start.Add(fireAhead))
	if err := r.forceAll(ctx, captured, forced); err != nil {
		return results(captured, r.rules), err
	}

	r.logger.Info("waiting for forced schedules to fire",
		"wait", r.wait.String(),
		"forced_expression", forced,
	)
	if err := r.sleep(ctx, r.wait); err != nil {
		// Interrupted mid-wait: attempt restoration anyway so the rules are
		// not left on the one-shot schedule.
		r.logger.Warn("wait interrupted, restoring original schedules early", "error", err)
	}

	restoreErr := r.restoreAll(ctx, captured)
	return results(captured, r.rules), restoreErr
}

// captureAll reads and records every rule's current definition, in list
// order. The first failure aborts with a lookup error.
func (r *Runner) captureAll(ctx context.Context) ([]*capturedRule, error) {
	captured := make([]*capturedRule, 0, len(r.rules))

	for _, name := range r.rules {
		opCtx, cancel := context.WithTimeout(ctx, ruleOperationTimeout)
		out, err := r.client.DescribeRule(opCtx, &eventbridge.DescribeRuleInput{
			Name: aws.String(name),
		})
		cancel()
		if err != nil {
			captured = append(captured, &capturedRule{name: name, lifecycle: types.RuleFailed})
			return captured, types.NewOpError(types.ErrCodeLookup, name, err)
		}

		rule := &capturedRule{
			name:         name,
			expression:   aws.ToString(out.ScheduleExpression),
			description:  out.Description,
			state:        out.State,
			roleArn:      out.RoleArn,
			eventBusName: out.EventBusName,
			lifecycle:    types.RuleCaptured,
		}
		captured = append(captured, rule)

		r.logger.Info("captured original schedule",
			"rule", name,
			"expression", rule.expression,
		)
	}

	return captured, nil
}

// forceAll overwrites every captured rule's schedule with the one-shot
// expression, in list order. The first failure aborts with an update error.
func (r *Runner) forceAll(ctx context.Context, captured []*capturedRule, forced string) error {
	for _, rule := range captured {
		if err := r.putRule(ctx, rule, forced); err != nil {
			rule.lifecycle = types.RuleFailed
			return types.NewOpError(types.ErrCodeUpdate, rule.name, err)
		}
		rule.lifecycle = types.RuleForced

		r.logger.Info("applied one-shot schedule",
			"rule", rule.name,
			"expression", forced,
		)
	}
	return nil
}

// restoreAll writes every captured original expression back, in list order.
// Unlike the earlier phases this is best-effort: a failure is recorded and
// restoration continues with the remaining rules. Restoration runs detached
// from the caller's cancellation so a Ctrl-C during the wait still puts the
// original schedules back.
func (r *Runner) restoreAll(ctx context.Context, captured []*capturedRule) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error

	for _, rule := range captured {
		if err := r.putRule(ctx, rule, rule.expression); err != nil {
			rule.lifecycle = types.RuleFailed
			restoreErr := types.NewOpError(types.ErrCodeRestore, rule.name, err)
			errs = append(errs, restoreErr)
			r.logger.Error("failed to restore original schedule",
				"rule", rule.name,
				"expression", rule.expression,
				"error", err,
			)
			continue
		}
		rule.lifecycle = types.RuleRestored

		r.logger.Info("restored original schedule",
			"rule", rule.name,
			"expression", rule.expression,
		)
	}

	return errors.Join(errs...)
}

// putRule writes the given schedule expression for a rule, carrying through
// the non-schedule attributes captured at describe time.
func (r *Runner) putRule(ctx context.Context, rule *capturedRule, expression string) error {
	opCtx, cancel := context.WithTimeout(ctx, ruleOperationTimeout)
	defer cancel()

	_, err := r.client.PutRule(opCtx, &eventbridge.PutRuleInput{
		Name:               aws.String(rule.name),
		ScheduleExpression: aws.String(expression),
		Description:        rule.description,
		State:              rule.state,
		RoleArn:            rule.roleArn,
		EventBusName:       rule.eventBusName,
	})
	return err
}

// results converts the captured progress into RuleResults, padding rules the
// pass never reached with a pending entry so the report always covers the
// full list.
func results(captured []*capturedRule, rules []string) []RuleResult {
	out := make([]RuleResult, 0, len(rules))
	for _, rule := range captured {
		out = append(out, RuleResult{
			Name:     rule.name,
			Original: rule.expression,
			State:    rule.lifecycle,
		})
	}
	for i := len(captured); i < len(rules); i++ {
		out = append(out, RuleResult{Name: rules[i], State: types.RulePending})
	}
	return out
}

// sleepContext blocks for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
