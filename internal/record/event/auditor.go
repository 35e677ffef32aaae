package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgmetrics"
	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

// Auditor logs every mutation and keeps per-kind counters.
type Auditor struct {
	events  *prometheus.CounterVec
	records *prometheus.CounterVec
}

// NewAuditor registers its counters on reg; a nil reg only logs.
func NewAuditor(reg *pkgmetrics.Registry) *Auditor {
	a := &Auditor{}
	if reg != nil {
		a.events = reg.CounterVec("record", "mutation_events_total", "Committed mutations by kind.", "kind")
		a.records = reg.CounterVec("record", "records_changed_total", "Records added or removed by kind.", "kind")
	}
	return a
}

func (a *Auditor) Handle(ctx context.Context, event entity.MutationEvent) error {
	if event.EventID == "" {
		return errors.New("missing event id")
	}

	slog.InfoContext(ctx, "mutation audited",
		"event_id", event.EventID,
		"kind", event.Kind,
		"batch_id", event.BatchID,
		"record_id", event.RecordID,
		"count", event.Count,
		"remaining", event.Remaining,
		"at", event.At,
	)

	if a.events != nil {
		a.events.WithLabelValues(string(event.Kind)).Inc()
		a.records.WithLabelValues(string(event.Kind)).Add(float64(event.Count))
	}

	return nil
}
