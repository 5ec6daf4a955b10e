// Package config reads the engine's flat key=value configuration file, as
// specified in §4.2/§6.2: no YAML, no nesting, just recognized keys with
// sensible defaults for anything left unset. This is deliberately the
// plainest loader in the repo — see internal/jobdef for the richer YAML
// surface used for process-list declarations.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every recognized key from the flat configuration file.
type Config struct {
	ApplicationName string
	BatchName       string

	JobPollInterval          int
	MaxParallelJobs          int
	MaxArchivedLogs          int
	PerformAuditTableUpdates bool
	AuditTableUpdateInterval int
	AuditTableCriticality    string

	BfConnectString     string
	BfUserId            string
	BfUserPassword      string
	BfBinFileDirectory  string
	BfLogFileDirectory  string
	BfLockFileDirectory string

	BinFileDirectory  string
	LogFileDirectory  string
	PollFileDirectory string
	WorkFileDirectory string

	SendFailureMessage bool
	AlertEMailList     string

	// MaxLoadAverage gates internal/scheduler's load-average throttle; 0
	// disables it. Not part of spec.md's key list, added for the
	// domain-stack load throttle.
	MaxLoadAverage float64
}

// recognizedKeys maps a configuration key to a setter that assigns the raw
// string value (already unquoted) onto a Config.
var recognizedKeys = map[string]func(*Config, string) error{
	"ApplicationName":          func(c *Config, v string) error { c.ApplicationName = v; return nil },
	"BatchName":                func(c *Config, v string) error { c.BatchName = v; return nil },
	"JobPollInterval":          intSetter(func(c *Config, n int) { c.JobPollInterval = n }),
	"MaxParallelJobs":          intSetter(func(c *Config, n int) { c.MaxParallelJobs = n }),
	"MaxArchivedLogs":          intSetter(func(c *Config, n int) { c.MaxArchivedLogs = n }),
	"PerformAuditTableUpdates": yesNoSetter(func(c *Config, b bool) { c.PerformAuditTableUpdates = b }),
	"AuditTableUpdateInterval": intSetter(func(c *Config, n int) { c.AuditTableUpdateInterval = n }),
	"AuditTableCriticality":    func(c *Config, v string) error { c.AuditTableCriticality = v; return nil },
	"BfConnectString":          func(c *Config, v string) error { c.BfConnectString = v; return nil },
	"BfUserId":                 func(c *Config, v string) error { c.BfUserId = v; return nil },
	"BfUserPassword":           func(c *Config, v string) error { c.BfUserPassword = v; return nil },
	"BfBinFileDirectory":       func(c *Config, v string) error { c.BfBinFileDirectory = v; return nil },
	"BfLogFileDirectory":       func(c *Config, v string) error { c.BfLogFileDirectory = v; return nil },
	"BfLockFileDirectory":      func(c *Config, v string) error { c.BfLockFileDirectory = v; return nil },
	"BinFileDirectory":         func(c *Config, v string) error { c.BinFileDirectory = v; return nil },
	"LogFileDirectory":         func(c *Config, v string) error { c.LogFileDirectory = v; return nil },
	"PollFileDirectory":        func(c *Config, v string) error { c.PollFileDirectory = v; return nil },
	"WorkFileDirectory":        func(c *Config, v string) error { c.WorkFileDirectory = v; return nil },
	"SendFailureMessage":       yesNoSetter(func(c *Config, b bool) { c.SendFailureMessage = b }),
	"AlertEMailList":           func(c *Config, v string) error { c.AlertEMailList = v; return nil },
	"MaxLoadAverage": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid MaxLoadAverage %q: %w", v, err)
		}
		c.MaxLoadAverage = f
		return nil
	},
}

func intSetter(assign func(*Config, int)) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer value %q: %w", v, err)
		}
		assign(c, n)
		return nil
	}
}

func yesNoSetter(assign func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		switch strings.ToUpper(v) {
		case "Y":
			assign(c, true)
		case "N":
			assign(c, false)
		default:
			return fmt.Errorf("expected Y or N, got %q", v)
		}
		return nil
	}
}

// Default returns a Config populated with the defaults spec §6.2 names.
func Default() *Config {
	return &Config{
		JobPollInterval:          2,
		MaxParallelJobs:          0,
		MaxArchivedLogs:          3,
		AuditTableUpdateInterval: 2,
		AuditTableCriticality:    "WARN",
	}
}

// Load reads a flat KEY="value" / KEY=value file. Unrecognized keys are
// ignored. Returns an error only if the file cannot be read or a recognized
// key fails to parse (e.g. a non-integer JobPollInterval).
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	cfg := Default()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}

		setter, known := recognizedKeys[key]
		if !known {
			continue
		}
		if err := setter(cfg, value); err != nil {
			return nil, fmt.Errorf("config key %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return cfg, nil
}

// splitKeyValue recognizes KEY="value" or KEY=value, stripping one matching
// pair of surrounding double quotes from the value.
func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}
