// Package zap adapts a *zap.Logger to gencache.Logger.
//
//	s, _ := gencache.New(gencache.Options[Contact]{..., Logger: zap.New(logger)})
package zap

import (
	"go.uber.org/zap"

	"github.com/unkn0wn-root/gencache"
)

var _ gencache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New wraps l; a nil l logs nothing.
func New(l *zap.Logger) ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return ZapLogger{L: l.Named("gencache")}
}

func (z ZapLogger) Debug(msg string, f gencache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f gencache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f gencache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f gencache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f gencache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
