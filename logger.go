package gencache

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Adapters for zap, logrus and slog live
// under log/. A nil Options.Logger disables logging.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// typedLogger prefixes messages with "gencache: " and tags every line with
// the strategy's type name.
type typedLogger struct {
	l        Logger
	typeName string
}

func newTypedLogger(l Logger, typeName string) Logger {
	if _, ok := l.(NopLogger); ok {
		return l
	}
	return typedLogger{l: l, typeName: typeName}
}

func (t typedLogger) fields(f Fields) Fields {
	out := make(Fields, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out["type"] = t.typeName
	return out
}

func (t typedLogger) Debug(msg string, f Fields) { t.l.Debug("gencache: "+msg, t.fields(f)) }
func (t typedLogger) Info(msg string, f Fields)  { t.l.Info("gencache: "+msg, t.fields(f)) }
func (t typedLogger) Warn(msg string, f Fields)  { t.l.Warn("gencache: "+msg, t.fields(f)) }
func (t typedLogger) Error(msg string, f Fields) { t.l.Error("gencache: "+msg, t.fields(f)) }
