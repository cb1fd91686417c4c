// Package config defines the configuration for the nookops operator CLIs.
// Configuration is loaded once at process startup and is immutable
// thereafter. Values are resolved from the OS environment (highest priority)
// or a dotenv file, with defaults matching the deployed nook stack so both
// tools run with zero arguments.
//
// Any invalid value causes the process to exit immediately on startup
// (fail fast).
package config

import "time"

// Config is the top-level configuration for the nookops tools. It is
// populated once during startup and never modified.
type Config struct {
	// System metadata
	Region   string `envconfig:"AWS_REGION" default:"us-east-1" validate:"required"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// RuleNames are the EventBridge rule names whose schedules the trigger
	// tool captures, forces, and restores. Order is significant: capture,
	// force, and restore all walk the list in this order.
	RuleNames []string `envconfig:"NOOK_RULE_NAMES" default:"y2-okochi-Daily2030Rule0,y2-okochi-Daily2030Rule1,y2-okochi-Daily2030Rule2,y2-okochi-Daily2030Rule3,y2-okochi-Daily2030Rule4" validate:"required,min=1,dive,required"`

	// FunctionNames are the Lambda functions the invoke tool calls, in
	// order. The viewer function is deliberately absent from this list;
	// it has no schedule and is only ever triggered manually.
	FunctionNames []string `envconfig:"NOOK_FUNCTION_NAMES" default:"y2-okochi-hacker_news,y2-okochi-paper_summarizer,y2-okochi-reddit_explorer,y2-okochi-tech_feed,y2-okochi-github_trending" validate:"required,min=1,dive,required"`

	// ViewerFunction is the informational-only function named in the
	// closing reminder printed by the invoke tool.
	ViewerFunction string `envconfig:"NOOK_VIEWER_FUNCTION" default:"y2-okochi-viewer" validate:"required"`

	// FireWait is how long the trigger tool blocks between forcing the
	// one-shot schedules and restoring the originals. The forced schedule
	// fires one minute ahead truncated to the minute, so the actual firing
	// delay lands anywhere from just under to just over this window.
	FireWait time.Duration `envconfig:"NOOK_FIRE_WAIT" default:"60s" validate:"required,min=1s"`

	// InvokePause is the fixed pause between synchronous invocations, a
	// coarse rate-limiting measure against the invocation endpoint.
	InvokePause time.Duration `envconfig:"NOOK_INVOKE_PAUSE" default:"2s" validate:"min=0"`
}
