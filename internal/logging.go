package internal

import "go.uber.org/zap"

// NewLogger builds the process logger. Debug mode switches to the
// development config: human-readable output and debug-level logging.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
