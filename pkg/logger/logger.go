// Package logger builds the csvx JSON logger (zap behind a logr.Logger) and
// carries it through context.Context.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/csvx/pkg/settings"
)

type loggerContextKey struct{}

// Structured field names shared by all csvx log lines.
const (
	RootCommandKey = "root_command"
	SubCommandKey  = "sub_command"
	SourceKey      = "source"
	CommitKey      = "commit"
	VersionKey     = "version"
	GoVersionKey   = "go_version"
	TimeStampKey   = "timestamp"
	MessageKey     = "message"
)

// Levels accepted by Config.Level. They follow zapcore: lower is noisier.
const (
	LevelDebug int8 = -1
	LevelInfo  int8 = 0
	LevelWarn  int8 = 1
)

// Config describes one logger.
type Config struct {
	// Level is the minimum level written.
	Level int8
	// Output receives JSON lines. Nil means stderr.
	Output io.Writer
}

var (
	mu      sync.RWMutex
	global  *logr.Logger
	zapSink *zap.Logger
	discard = logr.Discard()
)

// New builds a logger from cfg and returns it with the zap logger that backs
// it. Callers own the zap logger and should Sync it before exiting.
func New(cfg Config) (logr.Logger, *zap.Logger) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.TimeKey = TimeStampKey
	enc.MessageKey = MessageKey

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(enc),
		zapcore.Lock(zapcore.AddSync(out)),
		zap.NewAtomicLevelAt(zapcore.Level(cfg.Level)),
	).With([]zapcore.Field{
		zap.String(CommitKey, settings.VersionInformation.Commit),
		zap.String(VersionKey, settings.VersionInformation.BuildVersion),
		zap.String(GoVersionKey, runtime.Version()),
	})

	opts := []zap.Option{zap.WithFatalHook(zapcore.WriteThenPanic)}
	if cfg.Level <= LevelDebug {
		opts = append(opts, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	}
	z := zap.New(core, opts...)
	return zapr.NewLogger(z), z
}

// Init builds the process-wide logger, replacing (and flushing) any previous
// one, and returns it.
func Init(cfg Config) *logr.Logger {
	lgr, z := New(cfg)
	mu.Lock()
	prev := zapSink
	global, zapSink = &lgr, z
	mu.Unlock()
	if prev != nil {
		syncZap(prev)
	}
	return &lgr
}

// Global returns the logger set by Init, or a logger that discards
// everything.
func Global() *logr.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return &discard
	}
	return global
}

// WithLogger attaches log to ctx. ctx is returned as is when it already
// carries log.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if cur, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && cur == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the logger in ctx, falling back to Global.
func FromContext(ctx context.Context) *logr.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && log != nil {
			return log
		}
	}
	return Global()
}

// WithValues returns a copy of lgr with extra key/value pairs. A nil lgr is
// treated as Global.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	if lgr == nil {
		lgr = Global()
	}
	l := lgr.WithValues(keysAndValues...)
	return &l
}

// Sync flushes the logger set by Init.
func Sync() {
	mu.RLock()
	z := zapSink
	mu.RUnlock()
	if z != nil {
		syncZap(z)
	}
}

func syncZap(z *zap.Logger) {
	if err := z.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "csvx: flush log: %v\n", err)
	}
}

// isIgnorableSyncError reports errors from syncing pipes and terminals.
// Windows consoles report "The handle is invalid." inside an *os.PathError.
func isIgnorableSyncError(err error) bool {
	for _, e := range []error{syscall.ENOTTY, syscall.EINVAL, syscall.EIO, syscall.EBADF, os.ErrClosed} {
		if errors.Is(err, e) {
			return true
		}
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}
