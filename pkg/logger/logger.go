package logger

import (
	"go.uber.org/zap"
)

// New builds the process-wide zap logger. Release mode gets JSON output with
// sampling; anything else gets the human-readable development config.
func New(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
