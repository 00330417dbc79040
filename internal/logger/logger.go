// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// Call sites use printf-style helpers (Errorf, Infof, Debugf, Tracef);
// output is delegated to a zap logger that can be swapped at startup.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("starting server")
//	logger.Debugf("spot=%f vol=%f", spot, vol)
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel maps a level name or number ("debug", "2") to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "0":
		return Error, nil
	case "info", "1":
		return Info, nil
	case "debug", "2":
		return Debug, nil
	case "trace", "3":
		return Trace, nil
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

var (
	// current holds the active verbosity level.
	// Only messages with level <= current are logged.
	current atomic.Int32

	sink atomic.Pointer[zap.SugaredLogger]
)

func init() {
	current.Store(int32(Info))
	SetLogger(newZap(os.Stderr, false))
}

// Init installs a zap logger writing to stderr and sets the verbosity.
// Typically called once during application startup, after flags are parsed.
func Init(verbosity int, jsonOutput bool) error {
	if verbosity < int(Error) || verbosity > int(Trace) {
		return fmt.Errorf("verbosity %d out of range [%d, %d]", verbosity, Error, Trace)
	}
	SetLogger(newZap(os.Stderr, jsonOutput))
	SetVerbosity(verbosity)
	return nil
}

// SetLogger replaces the underlying zap logger.
func SetLogger(l *zap.Logger) {
	sink.Store(l.WithOptions(zap.AddCallerSkip(2)).Sugar())
}

// SetVerbosity sets the global logging verbosity.
func SetVerbosity(v int) {
	current.Store(int32(v))
}

// Verbosity returns the active verbosity level.
func Verbosity() Level {
	return Level(current.Load())
}

// Sync flushes buffered log entries.
func Sync() error {
	return sink.Load().Sync()
}

// newZap builds the default sink. Level filtering is done by verbosity,
// so the zap core accepts everything from debug up.
func newZap(w zapcore.WriteSyncer, jsonOutput bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonOutput {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(w), zapcore.DebugLevel)
	return zap.New(core, zap.AddCaller())
}

// logf is the internal logging helper.
// It checks verbosity and delegates formatting/output to zap.
func logf(l Level, format string, args ...any) {
	if Verbosity() < l {
		return
	}
	s := sink.Load()
	switch l {
	case Error:
		s.Errorf(format, args...)
	case Info:
		s.Infof(format, args...)
	case Debug:
		s.Debugf(format, args...)
	default:
		s.With("trace", true).Debugf(format, args...)
	}
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	logf(Error, format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	logf(Info, format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	logf(Debug, format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	logf(Trace, format, args...)
}
