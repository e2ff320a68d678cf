// Package logger configures the process-wide zap logger.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init builds a logger for the given level, installs it as the zap global
// and returns it. When file is set, JSON logs are also written to a rotated
// file next to console output.
func Init(level, file string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.SetLevel(zapcore.InfoLevel)
	}

	var logger *zap.Logger
	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(rotated),
				lvl,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				lvl,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		cfg := zap.NewProductionConfig()
		if lvl.Level() == zapcore.DebugLevel {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.Level = lvl
		cfg.OutputPaths = []string{"stdout"}
		l, err := cfg.Build(zap.AddCaller())
		if err != nil {
			return nil, err
		}
		logger = l
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
