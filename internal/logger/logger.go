// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The bot writes lifecycle and error events to one JSON log per day under
// `<dir>/YYYY-MM-DD.log`.  When running in an interactive TTY the same
// events are teed, human-readable, to stderr so stdout stays free for
// command output.  Rotation, compression, and retention are handled by
// Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Dir: "logs", Tee: true, Level: "info"})
//	if err != nil { … }
//	log.Infow("config resolved", "dsn", cfg.RedactedDSN())
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls sinks and verbosity.  An empty Dir disables the file
// sink; an empty Level means info.
type Options struct {
	Dir   string
	Tee   bool
	Level string
}

// New builds a *zap.SugaredLogger and installs it as the process-wide
// default via zap.ReplaceGlobals, so zap.S() works everywhere afterwards.
func New(o Options) (*zap.SugaredLogger, error) {
	level := zap.InfoLevel
	if o.Level != "" {
		if err := level.UnmarshalText([]byte(o.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", o.Level, err)
		}
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	var (
		cores   []zapcore.Core
		errSink zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
	)

	if o.Dir != "" {
		if err := os.MkdirAll(o.Dir, 0o755); err != nil {
			return nil, err
		}
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(o.Dir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileSink, level))
		errSink = fileSink
	}

	if o.Tee || len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stderr),
			level,
		))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(errSink), zap.AddCaller()).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Debugw("logger online", "dir", o.Dir, "tee", o.Tee, "level", level.String())
	return z, nil
}

// RunningInTTY reports whether stdout is a character device.
func RunningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
