// Package sloghook writes gencache Hooks events to a *slog.Logger, with
// sampling for the chatty events and key redaction.
package sloghook

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/gencache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery     uint64
	CorruptEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr     atomic.Uint64
	missCtr    atomic.Uint64
	corruptCtr atomic.Uint64
}

var _ gencache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(typeName, op string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("gencache.hit", "type", typeName, "op", op)
}

func (h *Hooks) Miss(typeName, op string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.missCtr) {
		return
	}
	h.l.Debug("gencache.miss", "type", typeName, "op", op)
}

func (h *Hooks) ProviderError(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("gencache.provider_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) ProviderSetRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("gencache.provider_set_rejected", "key", h.redact(key))
}

func (h *Hooks) FingerprintError(typeName, op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("gencache.fingerprint_error",
		"type", typeName,
		"op", op,
		"err", err)
}

func (h *Hooks) CorruptEntry(key, reason string) {
	if h.l == nil || !sample(h.opts.CorruptEvery, &h.corruptCtr) {
		return
	}
	h.l.Debug("gencache.corrupt_entry",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) GenerationBumpError(scopeKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("gencache.generation_bump_error",
		"key", h.redact(scopeKey),
		"err", err)
}

func (h *Hooks) ResultTooLarge(typeName, op string, n, max int) {
	if h.l == nil {
		return
	}
	h.l.Info("gencache.result_too_large",
		"type", typeName,
		"op", op,
		"n", n,
		"max", max)
}
