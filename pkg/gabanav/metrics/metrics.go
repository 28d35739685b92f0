// Package metrics records navigation activity: entries created and torn
// down, and transitions started, settled or superseded.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives navigation events. Implementations must be cheap; they
// are called on the UI goroutine.
type Recorder interface {
	EntryCreated(scoped bool)
	EntryDestroyed(scoped bool)
	TransitionStarted(policy string)
	TransitionSettled()
	TransitionSuperseded()
}

// Nop discards everything.
type Nop struct{}

func (Nop) EntryCreated(bool)        {}
func (Nop) EntryDestroyed(bool)      {}
func (Nop) TransitionStarted(string) {}
func (Nop) TransitionSettled()       {}
func (Nop) TransitionSuperseded()    {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

// Prometheus exports navigation events as Prometheus metrics.
type Prometheus struct {
	entriesCreated   *prometheus.CounterVec
	entriesDestroyed *prometheus.CounterVec
	liveEntries      *prometheus.GaugeVec
	transitions      *prometheus.CounterVec
	settled          prometheus.Counter
	superseded       prometheus.Counter
}

// NewPrometheus creates the collectors and registers them with reg.
// Collectors already registered by an earlier host are reused.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if namespace == "" {
		namespace = "gabanav"
	}
	p := &Prometheus{
		entriesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_created_total",
			Help:      "Navigation entries created, by kind.",
		}, []string{"kind"}),
		entriesDestroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_destroyed_total",
			Help:      "Navigation entries torn down, by kind.",
		}, []string{"kind"}),
		liveEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries_live",
			Help:      "Navigation entries currently alive, by kind.",
		}, []string{"kind"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_started_total",
			Help:      "Transitions started, by queueing policy.",
		}, []string{"policy"}),
		settled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_settled_total",
			Help:      "Transitions that settled on their target.",
		}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_superseded_total",
			Help:      "Transitions replaced by a newer target before settling.",
		}),
	}
	if reg == nil {
		return p, nil
	}
	var err error
	if p.entriesCreated, err = register(reg, p.entriesCreated); err != nil {
		return nil, err
	}
	if p.entriesDestroyed, err = register(reg, p.entriesDestroyed); err != nil {
		return nil, err
	}
	if p.liveEntries, err = register(reg, p.liveEntries); err != nil {
		return nil, err
	}
	if p.transitions, err = register(reg, p.transitions); err != nil {
		return nil, err
	}
	if p.settled, err = register(reg, p.settled); err != nil {
		return nil, err
	}
	if p.superseded, err = register(reg, p.superseded); err != nil {
		return nil, err
	}
	return p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("metrics: register: %w", err)
	}
	return c, nil
}

func kind(scoped bool) string {
	if scoped {
		return "scoped"
	}
	return "entry"
}

func (p *Prometheus) EntryCreated(scoped bool) {
	p.entriesCreated.WithLabelValues(kind(scoped)).Inc()
	p.liveEntries.WithLabelValues(kind(scoped)).Inc()
}

func (p *Prometheus) EntryDestroyed(scoped bool) {
	p.entriesDestroyed.WithLabelValues(kind(scoped)).Inc()
	p.liveEntries.WithLabelValues(kind(scoped)).Dec()
}

func (p *Prometheus) TransitionStarted(policy string) {
	p.transitions.WithLabelValues(policy).Inc()
}

func (p *Prometheus) TransitionSettled() { p.settled.Inc() }

func (p *Prometheus) TransitionSuperseded() { p.superseded.Inc() }
