package config

import (
	"strings"
	"testing"
)

func TestValidateRunner(t *testing.T) {
	cfg := Default()
	cfg.Runner.MaxJobs = 0

	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Field != "runner.max_jobs" {
		t.Errorf("field = %q", errs[0].Field)
	}
}

func TestValidateCheck(t *testing.T) {
	cfg := Default()
	cfg.Check.Retries = 0
	cfg.Check.RetryDelaySeconds = -1
	cfg.Check.TimeoutSeconds = 0
	cfg.Check.Workers = 0

	errs := cfg.Validate()
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), errs)
	}
}

func TestValidateLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"

	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Message, "must be one of") {
		t.Errorf("message = %q", errs[0].Message)
	}
}

func TestValidateLoggingLevelCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "DEBUG"
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("upper-case level should validate: %v", errs)
	}
}

func TestValidationErrorsFormatting(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("message = %q", msg)
	}

	one := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	if one.Error() != "a: bad (got: 1)" {
		t.Errorf("single error = %q", one.Error())
	}
}
