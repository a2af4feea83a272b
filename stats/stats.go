// Package stats collects per-route operational statistics fed by the
// cascade updater.
package stats

import (
	"sync"

	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/soundline/ferryops/route"
)

// Recorder accepts delay and cancellation facts about a route's departures.
type Recorder interface {
	Delay(r route.ID, minutes int)
	Cancellation(r route.ID)
}

type promRecorder struct {
	delays        metrics.Counter
	delayMinutes  metrics.Counter
	cancellations metrics.Counter
}

// NewPrometheus registers and returns a prometheus-backed recorder. It must
// be created at most once per process.
func NewPrometheus() Recorder {
	return &promRecorder{
		delays: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "ferryops",
			Subsystem: "routes",
			Name:      "delayed_departures_total",
			Help:      "Number of delayed departures per route.",
		}, []string{"route"}),
		delayMinutes: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "ferryops",
			Subsystem: "routes",
			Name:      "delay_minutes_total",
			Help:      "Accumulated delay minutes per route.",
		}, []string{"route"}),
		cancellations: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "ferryops",
			Subsystem: "routes",
			Name:      "cancelled_departures_total",
			Help:      "Number of cancelled departures per route.",
		}, []string{"route"}),
	}
}

func (r *promRecorder) Delay(id route.ID, minutes int) {
	r.delays.With("route", string(id)).Add(1)
	r.delayMinutes.With("route", string(id)).Add(float64(minutes))
}

func (r *promRecorder) Cancellation(id route.ID) {
	r.cancellations.With("route", string(id)).Add(1)
}

// Mem is an in-memory recorder for tests.
type Mem struct {
	mu            sync.Mutex
	Delays        map[route.ID]int
	DelayMinutes  map[route.ID]int
	Cancellations map[route.ID]int
}

// NewMem returns an empty in-memory recorder.
func NewMem() *Mem {
	return &Mem{
		Delays:        make(map[route.ID]int),
		DelayMinutes:  make(map[route.ID]int),
		Cancellations: make(map[route.ID]int),
	}
}

func (m *Mem) Delay(id route.ID, minutes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delays[id]++
	m.DelayMinutes[id] += minutes
}

func (m *Mem) Cancellation(id route.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancellations[id]++
}
