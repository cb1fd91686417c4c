package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Pin the one variable commonly present in developer environments so
	// the assertions below are stable.
	t.Setenv("AWS_REGION", "us-east-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Region != "us-east-1" {
		t.Errorf("Region = %q, want %q", cfg.Region, "us-east-1")
	}
	if len(cfg.RuleNames) != 5 {
		t.Errorf("len(RuleNames) = %d, want 5", len(cfg.RuleNames))
	}
	if len(cfg.FunctionNames) != 5 {
		t.Errorf("len(FunctionNames) = %d, want 5", len(cfg.FunctionNames))
	}
	if cfg.ViewerFunction != "y2-okochi-viewer" {
		t.Errorf("ViewerFunction = %q, want %q", cfg.ViewerFunction, "y2-okochi-viewer")
	}
	if cfg.FireWait != 60*time.Second {
		t.Errorf("FireWait = %v, want 60s", cfg.FireWait)
	}
	if cfg.InvokePause != 2*time.Second {
		t.Errorf("InvokePause = %v, want 2s", cfg.InvokePause)
	}

	// The viewer must not be in the automatic invocation list.
	for _, fn := range cfg.FunctionNames {
		if fn == cfg.ViewerFunction {
			t.Errorf("viewer function %q found in FunctionNames", fn)
		}
	}
}

func TestLoad_DefaultRuleOrderPreserved(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// Capture, force, and restore all walk this order; it must be the
	// stagger order of the deployed stack, not sorted.
	expected := []string{
		"y2-okochi-Daily2030Rule0",
		"y2-okochi-Daily2030Rule1",
		"y2-okochi-Daily2030Rule2",
		"y2-okochi-Daily2030Rule3",
		"y2-okochi-Daily2030Rule4",
	}
	if len(cfg.RuleNames) != len(expected) {
		t.Fatalf("len(RuleNames) = %d, want %d", len(cfg.RuleNames), len(expected))
	}
	for i, name := range expected {
		if cfg.RuleNames[i] != name {
			t.Errorf("RuleNames[%d] = %q, want %q", i, cfg.RuleNames[i], name)
		}
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("NOOK_RULE_NAMES", "rule-a,rule-b")
	t.Setenv("NOOK_FUNCTION_NAMES", "fn-one")
	t.Setenv("NOOK_FIRE_WAIT", "90s")
	t.Setenv("AWS_REGION", "ap-northeast-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(cfg.RuleNames) != 2 || cfg.RuleNames[0] != "rule-a" || cfg.RuleNames[1] != "rule-b" {
		t.Errorf("RuleNames = %v, want [rule-a rule-b]", cfg.RuleNames)
	}
	if len(cfg.FunctionNames) != 1 || cfg.FunctionNames[0] != "fn-one" {
		t.Errorf("FunctionNames = %v, want [fn-one]", cfg.FunctionNames)
	}
	if cfg.FireWait != 90*time.Second {
		t.Errorf("FireWait = %v, want 90s", cfg.FireWait)
	}
	if cfg.Region != "ap-northeast-1" {
		t.Errorf("Region = %q, want ap-northeast-1", cfg.Region)
	}
}

func TestLoad_RejectsViewerInFunctionList(t *testing.T) {
	t.Setenv("NOOK_FUNCTION_NAMES", "fn-one,y2-okochi-viewer")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() succeeded, want error for viewer in function list")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error is %T, want *ConfigError", err)
	}
	if cfgErr.Type != ErrValidation {
		t.Errorf("error type = %q, want %q", cfgErr.Type, ErrValidation)
	}
	if !strings.Contains(cfgErr.Message, "y2-okochi-viewer") {
		t.Errorf("error message %q does not name the offending function", cfgErr.Message)
	}
}

func TestLoad_RejectsInvalidDuration(t *testing.T) {
	t.Setenv("NOOK_FIRE_WAIT", "not-a-duration")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() succeeded, want parse error")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error is %T, want *ConfigError", err)
	}
	if cfgErr.Type != ErrParsing {
		t.Errorf("error type = %q, want %q", cfgErr.Type, ErrParsing)
	}
}

func TestLoad_RejectsBlankRuleNames(t *testing.T) {
	// A bare comma parses to two empty rule names, which validation must
	// reject rather than letting a DescribeRule call fail later.
	t.Setenv("NOOK_RULE_NAMES", ",")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() succeeded, want validation error for blank rule names")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error is %T, want *ConfigError", err)
	}
	if cfgErr.Type != ErrValidation {
		t.Errorf("error type = %q, want %q", cfgErr.Type, ErrValidation)
	}
}
