// loader.go implements the configuration loading lifecycle for the nookops
// CLIs.
//
// The loading sequence is:
//  1. Enforce UTC timezone; the forced cron expressions are UTC and mixing
//     local time in would silently shift the one-shot firing minute.
//  2. Load a dotenv file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Validate the struct with go-playground/validator, plus cross-field
//     checks that struct tags cannot express.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrParsing indicates a failure parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the configuration failed validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
)

// ConfigError is a diagnostic error type returned by Load to aid debugging.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load loads and validates the nookops configuration.
//
// envFile names an optional dotenv file to load before processing the
// environment; pass "" to use the default ".env" lookup. A missing dotenv
// file is not an error. Values already present in the OS environment are
// never overridden by the dotenv file.
func Load(envFile string) (*Config, error) {
	time.Local = time.UTC

	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	// The viewer function must never be part of the automatic invocation
	// list; it is excluded from scheduling in the deployed stack and only
	// makes sense as a manual trigger.
	for _, fn := range cfg.FunctionNames {
		if fn == cfg.ViewerFunction {
			return nil, &ConfigError{
				Type:    ErrValidation,
				Message: fmt.Sprintf("viewer function %q must not appear in NOOK_FUNCTION_NAMES", fn),
			}
		}
	}

	return &cfg, nil
}
