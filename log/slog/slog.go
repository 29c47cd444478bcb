//go:build go1.21

// Package slog adapts a *slog.Logger to gencache.Logger.
package slog

import (
	"context"
	"io"
	stdslog "log/slog"
	"sort"

	"github.com/unkn0wn-root/gencache"
)

var _ gencache.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New tags every record with component=gencache. A nil l logs nothing.
func New(l *stdslog.Logger) Logger {
	if l == nil {
		l = stdslog.New(stdslog.NewTextHandler(io.Discard, nil))
	}
	return Logger{L: l.With(stdslog.String("component", "gencache"))}
}

func (s Logger) Debug(msg string, f gencache.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f gencache.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f gencache.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f gencache.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(level stdslog.Level, msg string, f gencache.Fields) {
	ctx := context.Background()
	if !s.L.Enabled(ctx, level) {
		return
	}
	s.L.LogAttrs(ctx, level, msg, attrs(f)...)
}

// attrs sorts by key so a record's attribute order is stable.
func attrs(f gencache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range names {
		if err, ok := f[k].(error); ok {
			out = append(out, stdslog.String(k, err.Error()))
			continue
		}
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
