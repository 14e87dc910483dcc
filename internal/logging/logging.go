// Package logging configures the structured logger used by the CLI (the
// service fakes do not log). The matcher package itself stays side-effect
// free (§5: single-threaded, no shared mutable state) — nothing in
// internal/matcher ever imports this package.
package logging

import "go.uber.org/zap"

// New builds a zap.SugaredLogger. verbose selects zap's development
// configuration (debug level); otherwise zap's production configuration
// (info level) is used. The CLI logs the start of a match run and each
// scenario's outcome through it.
func New(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
