package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a single configuration validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration against the bounds spec §6.2 names,
// in particular the AuditTableUpdateInterval/JobPollInterval ordering in
// §8: when audit table updates are enabled, an AuditTableUpdateInterval
// shorter than JobPollInterval is rejected, since the audit table cannot
// usefully be refreshed more often than the engine polls its jobs.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if c.ApplicationName == "" {
		errors = append(errors, ValidationError{Field: "ApplicationName", Message: "is required"})
	}

	if c.BatchName == "" {
		errors = append(errors, ValidationError{Field: "BatchName", Message: "is required"})
	}

	if c.JobPollInterval <= 0 {
		errors = append(errors, ValidationError{Field: "JobPollInterval", Message: "must be positive"})
	}

	if c.MaxParallelJobs < 0 {
		errors = append(errors, ValidationError{Field: "MaxParallelJobs", Message: "cannot be negative (0 means unlimited)"})
	}

	if c.MaxArchivedLogs < 0 {
		errors = append(errors, ValidationError{Field: "MaxArchivedLogs", Message: "cannot be negative (0 means unlimited retention)"})
	}

	if c.PerformAuditTableUpdates {
		if c.AuditTableUpdateInterval < c.JobPollInterval {
			errors = append(errors, ValidationError{
				Field:   "AuditTableUpdateInterval",
				Message: fmt.Sprintf("must be >= JobPollInterval (%d), got %d", c.JobPollInterval, c.AuditTableUpdateInterval),
			})
		}

		validCriticality := map[string]bool{"WARN": true, "ERROR": true}
		if !validCriticality[c.AuditTableCriticality] {
			errors = append(errors, ValidationError{Field: "AuditTableCriticality", Message: "must be 'WARN' or 'ERROR'"})
		}

		if c.BfConnectString == "" {
			errors = append(errors, ValidationError{Field: "BfConnectString", Message: "is required when PerformAuditTableUpdates=Y"})
		}
	}

	if c.BinFileDirectory == "" {
		errors = append(errors, ValidationError{Field: "BinFileDirectory", Message: "is required"})
	}

	if c.LogFileDirectory == "" {
		errors = append(errors, ValidationError{Field: "LogFileDirectory", Message: "is required"})
	}

	if c.PollFileDirectory == "" {
		errors = append(errors, ValidationError{Field: "PollFileDirectory", Message: "is required"})
	}

	if c.MaxLoadAverage < 0 {
		errors = append(errors, ValidationError{Field: "MaxLoadAverage", Message: "cannot be negative (0 disables the throttle)"})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
