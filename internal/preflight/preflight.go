package preflight

import (
	"tapetail/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Failures are advisory: the daemon starts regardless and logs what an
// operator should fix.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckTelemetrySource(cfg.Source.TelemetryLog),
	}
	if cfg.Paths.APIBind != "" {
		results = append(results, CheckBindAddress(cfg.Paths.APIBind))
	}
	return results
}
