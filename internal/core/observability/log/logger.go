package log

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Log = (*Logger)(nil)

// Logger is the zap-backed Log implementation.
type Logger struct {
	zapLogger *zap.Logger
	level     zap.AtomicLevel
}

// New builds a JSON logger writing to stderr at the given level.
func New(level Level) (*Logger, error) {
	atomic := zap.NewAtomicLevelAt(toZapLevel(level))
	config := zap.Config{
		Level:       atomic,
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{zapLogger: zapLogger, level: atomic}, nil
}

// Wrap adapts an existing zap logger. The level is taken from the logger's core
// and can be tightened, but not loosened, with SetLevel.
func Wrap(z *zap.Logger) *Logger {
	atomic := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	for _, lvl := range []zapcore.Level{zap.DebugLevel, zap.InfoLevel, zap.WarnLevel, zap.ErrorLevel} {
		if z.Core().Enabled(lvl) {
			atomic.SetLevel(lvl)
			break
		}
	}
	return &Logger{zapLogger: z, level: atomic}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop(), level: zap.NewAtomicLevelAt(zap.ErrorLevel + 1)}
}

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	if !l.Enabled(level) {
		return
	}
	l.zapLogger.Log(toZapLevel(level), msg, toZapFields(fields...)...)
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.Log(LevelDebug, msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.Log(LevelInfo, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.Log(LevelWarn, msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.Log(LevelError, msg, fields...)
}

func (l *Logger) With(fields ...Field) Log {
	return &Logger{
		zapLogger: l.zapLogger.With(toZapFields(fields...)...),
		level:     l.level,
	}
}

func (l *Logger) Named(name string) Log {
	return &Logger{zapLogger: l.zapLogger.Named(name), level: l.level}
}

func (l *Logger) Enabled(level Level) bool {
	return l.level.Enabled(toZapLevel(level))
}

func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(toZapLevel(level))
}

func (l *Logger) GetLevel() Level {
	return fromZapLevel(l.level.Level())
}

func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelInfo:
		return zap.InfoLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) Level {
	switch level {
	case zap.DebugLevel:
		return LevelDebug
	case zap.InfoLevel:
		return LevelInfo
	case zap.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}

func toZapFields(fields ...Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case BoolType:
			zapFields[i] = zap.Bool(f.Key, f.Value.(bool))
		case DurationType:
			zapFields[i] = zap.Duration(f.Key, f.Value.(time.Duration))
		case Float64Type:
			zapFields[i] = zap.Float64(f.Key, f.Value.(float64))
		case IntType:
			zapFields[i] = zap.Int(f.Key, f.Value.(int))
		case Int64Type:
			zapFields[i] = zap.Int64(f.Key, f.Value.(int64))
		case Uint64Type:
			zapFields[i] = zap.Uint64(f.Key, f.Value.(uint64))
		case StringType:
			zapFields[i] = zap.String(f.Key, f.Value.(string))
		case StringerType:
			zapFields[i] = zap.Stringer(f.Key, f.Value.(interface{ String() string }))
		case ErrorType:
			zapFields[i] = zap.NamedError(f.Key, f.Value.(error))
		default:
			zapFields[i] = zap.Any(f.Key, f.Value)
		}
	}
	return zapFields
}
