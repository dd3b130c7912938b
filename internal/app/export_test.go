package app

import (
	"io"

	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/logging"
)

// SetLoggerFactory replaces the logger constructor until the returned func runs.
func SetLoggerFactory(f func(logging.Config) (*zap.Logger, io.Closer, error)) (restore func()) {
	prev := newLogger
	newLogger = f
	return func() { newLogger = prev }
}
