// Package main is the entry point for toastreg, a command-line host for the
// notification registration library. It loads configuration, sets up
// logging, and registers or deregisters the configured application identity.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/toastreg/internal/config"
	"github.com/Guliveer/toastreg/notification"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:], defaultDeps()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the CLI for args. A launch by toast activation carries only
// the activation flag, which is not a cobra command; it is logged and
// acknowledged so the shell sees a clean exit.
func run(args []string, d deps) error {
	if notification.LaunchedByActivation(args) {
		cfg, err := config.LoadLayered(config.CLIOverrides{}, d.embedded)
		if err != nil {
			cfg = config.DefaultConfig()
		}
		logger := d.newLogger(cfg)
		defer logger.Sync()
		logger.Info("Launched by toast activation; toastreg has no activation handler",
			zap.Strings("args", args))
		return nil
	}

	cmd := newRootCmd(d)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// initLogger creates a zap logger based on the configuration.
// It writes human-readable output to stderr and, when configured, JSON to a
// log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
