package util

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/config"
)

// LoggingEnabled turns on the LogF trace output regardless of the configured
// level.
var LoggingEnabled = false

var (
	logger *zap.Logger
	once   sync.Once
)

// InitLogger builds the process logger. Only the first call has an effect.
func InitLogger(cfg *config.LogConfig) {
	once.Do(func() {
		logger = NewLogger(cfg)
	})
}

// NewLogger builds a logger from cfg. Stdout is reserved for the stdio
// transport, so console output goes to stderr unless asked otherwise.
func NewLogger(cfg *config.LogConfig) *zap.Logger {
	if cfg == nil {
		def := config.DefaultConfig().Log
		cfg = &def
	}

	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}
	if LoggingEnabled {
		level = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var cores []zapcore.Core
	switch cfg.Output {
	case "stdout":
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	case "file":
	default:
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level))
	}
	if (cfg.Output == "file" || cfg.Output == "both") && cfg.FilePath != "" {
		writer := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(writer), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// L returns the process logger, creating a default one if InitLogger was
// never called.
func L() *zap.Logger {
	InitLogger(nil)
	return logger
}

// LogF writes a formatted trace message when LoggingEnabled is set.
func LogF(format string, args ...interface{}) {
	if !LoggingEnabled {
		return
	}
	L().Sugar().Debugf(format, args...)
}

func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
