package logger

import (
	"go.uber.org/zap"
)

// New builds the process-wide zap logger. Production JSON encoding by
// default, human-readable console encoding when dev is set.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	return cfg.Build()
}
