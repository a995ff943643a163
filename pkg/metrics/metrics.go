package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Metrics exposes a tiny in-memory counter set shared by the server and the
// reminder consumer.
type Metrics struct {
	tokensSaved       atomic.Int64
	todosUpdated      atomic.Int64
	remindersQueued   atomic.Int64
	remindersConsumed atomic.Int64
	delivered         atomic.Int64
	failed            atomic.Int64
	retried           atomic.Int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TokensSaved       int64 `json:"tokens_saved"`
	TodosUpdated      int64 `json:"todos_updated"`
	RemindersQueued   int64 `json:"reminders_queued"`
	RemindersConsumed int64 `json:"reminders_consumed"`
	Delivered         int64 `json:"delivered"`
	Failed            int64 `json:"failed"`
	Retried           int64 `json:"retried"`
}

// New returns a zeroed Metrics collector.
func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncTokensSaved()       { m.tokensSaved.Add(1) }
func (m *Metrics) IncTodosUpdated()      { m.todosUpdated.Add(1) }
func (m *Metrics) IncRemindersQueued()   { m.remindersQueued.Add(1) }
func (m *Metrics) IncRemindersConsumed() { m.remindersConsumed.Add(1) }
func (m *Metrics) IncDelivered()         { m.delivered.Add(1) }
func (m *Metrics) IncFailed()            { m.failed.Add(1) }
func (m *Metrics) IncRetried()           { m.retried.Add(1) }

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		TokensSaved:       m.tokensSaved.Load(),
		TodosUpdated:      m.todosUpdated.Load(),
		RemindersQueued:   m.remindersQueued.Load(),
		RemindersConsumed: m.remindersConsumed.Load(),
		Delivered:         m.delivered.Load(),
		Failed:            m.failed.Load(),
		Retried:           m.retried.Load(),
	}
}

// Handler exposes the counters as a small JSON document.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.Snapshot())
	})
}
