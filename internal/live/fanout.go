package live

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/pkg/log"
	"effisense-go/pkg/metrics"
	"errors"
	"fmt"
)

// Sink is a named Publisher.
type Sink struct {
	Name      string
	Publisher Publisher
}

// Fanout hands every event to each configured sink in order.
// A failing sink does not stop the remaining ones.
type Fanout struct {
	sinks []Sink
}

// NewFanout creates a Fanout over sinks. Sinks with a nil Publisher are skipped.
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s.Publisher != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Sinks returns the names of the configured sinks.
func (f *Fanout) Sinks() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.Name)
	}
	return names
}

// PublishUsageCreated delivers event to every sink. Failures are logged and joined
// into the returned error; callers treat it as informational.
func (f *Fanout) PublishUsageCreated(ctx context.Context, event model.UsageEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publisher.PublishUsageCreated(ctx, event); err != nil {
			metrics.LiveEventsPublished.WithLabelValues(s.Name, "error").Inc()
			log.Warnw("live: sink failed", "sink", s.Name, "usageId", event.UsageID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		metrics.LiveEventsPublished.WithLabelValues(s.Name, "ok").Inc()
	}
	return errors.Join(errs...)
}
