// Package logging builds the application logger.
package logging

import "go.uber.org/zap"

// New returns a production logger, or a development logger with debug level
// when verbose is set.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
