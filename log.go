package main

import "go.uber.org/zap"

// logger is the process-wide sugared logger. Defaults to a no-op so library
// use and tests stay silent; entrypoints install a real one.
var logger = zap.NewNop().Sugar()

// initLogger installs a console logger writing to stderr. Debug level when
// verbose.
func initLogger(verbose bool) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return
	}
	logger = l.Sugar()
}
