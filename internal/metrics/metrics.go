package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the game counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	invitations *prometheus.CounterVec
	joins       *prometheus.CounterVec
	moves       *prometheus.CounterVec
	finished    *prometheus.CounterVec
	resets      *prometheus.CounterVec
	deletes     *prometheus.CounterVec
	renders     *prometheus.CounterVec
	commands    *prometheus.CounterVec
}

// New registers the game collectors plus Go and process collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		invitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xo", Name: "invitations_total", Help: "Invitations issued.",
		}, []string{"symbols"}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xo", Name: "joins_total", Help: "Invitation acceptances by result.",
		}, []string{"result"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xo", Name: "moves_total", Help: "Move attempts by result.",
		}, []string{"result"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xo", Name: "rounds_finished_total", Help: "Finished rounds by outcome.",
		}, []string{"outcome"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xo", Name: "resets_total", Help: "Reset requests by result.",
		}, []string{"result"}),
		deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xo", Name: "deletes_total", Help: "Delete requests by result.",
		}, []string{"result"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xo", Name: "renders_total", Help: "Board renders sent to chat by result.",
		}, []string{"result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xo", Name: "commands_total", Help: "Chat commands handled.",
		}, []string{"command"}),
	}
	reg.MustRegister(
		m.invitations, m.joins, m.moves, m.finished, m.resets, m.deletes, m.renders, m.commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ActiveSessions exposes a gauge that calls fn on every scrape.
func (m *Metrics) ActiveSessions(fn func() float64) {
	if m == nil || fn == nil {
		return
	}
	m.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "xo", Name: "active_sessions", Help: "Sessions currently held by the registry.",
	}, fn))
}

func (m *Metrics) Invitation(custom bool) {
	if m == nil {
		return
	}
	label := "default"
	if custom {
		label = "custom"
	}
	m.invitations.WithLabelValues(label).Inc()
}

func (m *Metrics) Join(result string) {
	if m != nil {
		m.joins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Move(result string) {
	if m != nil {
		m.moves.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Finished(outcome string) {
	if m != nil {
		m.finished.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Reset(result string) {
	if m != nil {
		m.resets.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Delete(result string) {
	if m != nil {
		m.deletes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Render(result string) {
	if m != nil {
		m.renders.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Command(name string) {
	if m != nil {
		m.commands.WithLabelValues(name).Inc()
	}
}
