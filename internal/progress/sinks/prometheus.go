package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"ankisign/internal/progress"
)

// PrometheusSink exports sync progress metrics. It owns all collectors for
// run lifecycle, item outcomes, and note additions.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runsRunning   prometheus.Gauge
	runDuration   *prometheus.HistogramVec

	itemsSynced  *prometheus.CounterVec
	itemsSkipped *prometheus.CounterVec
	itemFailures *prometheus.CounterVec
	notesAdded   *prometheus.CounterVec

	tracker *runTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ankisign_runs_started_total",
			Help: "Total sync runs that have started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ankisign_runs_completed_total",
			Help: "Total sync runs completed partitioned by result.",
		}, []string{"result"}),
		runsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ankisign_runs_running",
			Help: "Current number of running sync runs.",
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ankisign_run_duration_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{30, 60, 300, 900, 1800, 3600, 7200, 14400},
		}, []string{"result"}),
		itemsSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ankisign_items_synced_total",
			Help: "Content items fully synced partitioned by phase.",
		}, []string{"phase"}),
		itemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ankisign_items_skipped_total",
			Help: "Content items skipped partitioned by phase and reason.",
		}, []string{"phase", "reason"}),
		itemFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ankisign_item_failures_total",
			Help: "Per-item failures partitioned by phase and reason.",
		}, []string{"phase", "reason"}),
		notesAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ankisign_notes_added_total",
			Help: "Notes submitted to the store partitioned by deck.",
		}, []string{"deck"}),
		tracker: newRunTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runsRunning,
		s.runDuration,
		s.itemsSynced,
		s.itemsSkipped,
		s.itemFailures,
		s.notesAdded,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart, progress.StageRunDone, progress.StageRunError:
		s.handleRunEvent(evt)
	case progress.StageItemSynced:
		s.itemsSynced.WithLabelValues(string(evt.Phase)).Inc()
	case progress.StageItemSkip:
		s.itemsSkipped.WithLabelValues(string(evt.Phase), string(evt.Reason)).Inc()
	case progress.StageItemFail:
		s.itemFailures.WithLabelValues(string(evt.Phase), string(evt.Reason)).Inc()
	case progress.StageNoteAdded:
		s.notesAdded.WithLabelValues(evt.Deck).Inc()
	}
}

func (s *PrometheusSink) handleRunEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
		if s.tracker.start(evt.RunID) {
			s.runsRunning.Inc()
		}
	case progress.StageRunDone:
		s.runsCompleted.WithLabelValues("success").Inc()
		s.observeDuration(evt, "success")
	case progress.StageRunError:
		s.runsCompleted.WithLabelValues("error").Inc()
		s.observeDuration(evt, "error")
	}
	if evt.Stage != progress.StageRunStart && s.tracker.complete(evt.RunID) {
		s.runsRunning.Dec()
	}
}

func (s *PrometheusSink) observeDuration(evt progress.Event, label string) {
	if evt.Dur > 0 {
		s.runDuration.WithLabelValues(label).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type runTracker struct {
	mu      sync.Mutex
	running map[[16]byte]struct{}
}

func newRunTracker() *runTracker {
	return &runTracker{running: make(map[[16]byte]struct{})}
}

func (t *runTracker) start(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *runTracker) complete(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
