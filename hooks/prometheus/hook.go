// Package promhook exports gencache Hooks events as Prometheus counters.
//
//	reg := prometheus.NewRegistry()
//	hooks, err := promhook.New(promhook.Options{Namespace: "app", Registerer: reg})
package promhook

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/gencache"
)

type Options struct {
	Namespace string
	Subsystem string // default "gencache"
	// Registerer receives the collectors; nil => prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Hooks counts events. Keys are never used as labels; only type names and
// operation tags are, which keeps cardinality bounded.
type Hooks struct {
	requests     *prometheus.CounterVec
	providerErrs *prometheus.CounterVec
	setRejected  prometheus.Counter
	fingerprint  *prometheus.CounterVec
	corrupt      *prometheus.CounterVec
	bumpErrs     prometheus.Counter
	tooLarge     *prometheus.CounterVec
}

var _ gencache.Hooks = (*Hooks)(nil)

func New(opts Options) (*Hooks, error) {
	sub := opts.Subsystem
	if sub == "" {
		sub = "gencache"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: sub,
			Name:      name,
			Help:      help,
		}
	}

	h := &Hooks{
		requests: prometheus.NewCounterVec(
			counterOpts("requests_total", "Cache lookups by type, operation and result"),
			[]string{"type", "op", "result"},
		),
		providerErrs: prometheus.NewCounterVec(
			counterOpts("provider_errors_total", "Provider calls that failed"),
			[]string{"op"},
		),
		setRejected: prometheus.NewCounter(
			counterOpts("provider_set_rejected_total", "Writes the provider declined"),
		),
		fingerprint: prometheus.NewCounterVec(
			counterOpts("fingerprint_errors_total", "Queries that could not be fingerprinted"),
			[]string{"type", "op"},
		),
		corrupt: prometheus.NewCounterVec(
			counterOpts("corrupt_entries_total", "Entries cleared because they failed to decode"),
			[]string{"reason"},
		),
		bumpErrs: prometheus.NewCounter(
			counterOpts("generation_bump_errors_total", "Generation increments that failed"),
		),
		tooLarge: prometheus.NewCounterVec(
			counterOpts("results_too_large_total", "Results not cached because they exceeded MaxResults"),
			[]string{"type", "op"},
		),
	}

	for _, c := range []prometheus.Collector{
		h.requests,
		h.providerErrs,
		h.setRejected,
		h.fingerprint,
		h.corrupt,
		h.bumpErrs,
		h.tooLarge,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Hit(typeName, op string) {
	h.requests.With(prometheus.Labels{"type": typeName, "op": op, "result": "hit"}).Inc()
}

func (h *Hooks) Miss(typeName, op string) {
	h.requests.With(prometheus.Labels{"type": typeName, "op": op, "result": "miss"}).Inc()
}

func (h *Hooks) ProviderError(op, _ string, _ error) {
	h.providerErrs.WithLabelValues(op).Inc()
}

func (h *Hooks) ProviderSetRejected(string) { h.setRejected.Inc() }

func (h *Hooks) FingerprintError(typeName, op string, _ error) {
	h.fingerprint.WithLabelValues(typeName, op).Inc()
}

func (h *Hooks) CorruptEntry(_, reason string) {
	h.corrupt.WithLabelValues(reason).Inc()
}

func (h *Hooks) GenerationBumpError(string, error) { h.bumpErrs.Inc() }

func (h *Hooks) ResultTooLarge(typeName, op string, _, _ int) {
	h.tooLarge.WithLabelValues(typeName, op).Inc()
}
