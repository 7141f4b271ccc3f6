// Package logger holds the process-wide structured logger.
package logger

import (
	"go.uber.org/zap"
)

var Log = zap.NewNop()

// Init builds the global logger. Production gets JSON output, anything
// else the development console encoder.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	if environment == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
