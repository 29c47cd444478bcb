package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/gencache"
)

func TestEntries(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Info("hello", nil)
	l.Error("gencache: provider error", gencache.Fields{"op": "get", "err": errors.New("down")})

	if len(hook.AllEntries()) != 2 {
		t.Fatalf("entries=%d want 2", len(hook.AllEntries()))
	}
	e := hook.LastEntry()
	if e.Level != logrus.ErrorLevel {
		t.Fatalf("level=%v", e.Level)
	}
	if e.Data["component"] != "gencache" || e.Data["op"] != "get" {
		t.Fatalf("data=%v", e.Data)
	}
	if err, ok := e.Data[logrus.ErrorKey].(error); !ok || err.Error() != "down" {
		t.Fatalf("error field=%v", e.Data[logrus.ErrorKey])
	}
}
