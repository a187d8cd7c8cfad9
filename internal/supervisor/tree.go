// Package supervisor runs the long-lived background services under suture.
package supervisor

import (
	"context"
	"effisense-go/pkg/log"
	"time"

	"github.com/thejerf/suture/v4"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultTreeConfig returns suture's own defaults with a 10s shutdown timeout.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree has two layers: "live" (hub, redis relay) and "workers" (simulator),
// so a crashing worker cannot take live delivery down with it.
type Tree struct {
	root    *suture.Supervisor
	live    *suture.Supervisor
	workers *suture.Supervisor
}

// NewTree creates the supervisor tree.
func NewTree(cfg TreeConfig) *Tree {
	defaults := DefaultTreeConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = defaults.FailureDecay
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = defaults.FailureBackoff
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}

	spec := suture.Spec{
		EventHook:        logEvent,
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	childSpec := spec
	childSpec.EventHook = nil

	root := suture.New("effisense", spec)
	live := suture.New("live-layer", childSpec)
	workers := suture.New("worker-layer", childSpec)
	root.Add(live)
	root.Add(workers)

	return &Tree{root: root, live: live, workers: workers}
}

func logEvent(e suture.Event) {
	switch e.Type() {
	case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate:
		log.Warnw("supervisor: service failed", "event", e.String())
	case suture.EventTypeBackoff:
		log.Warnw("supervisor: entering backoff", "event", e.String())
	default:
		log.Infow("supervisor event", "event", e.String())
	}
}

// AddLiveService adds a service to the live layer.
func (t *Tree) AddLiveService(svc suture.Service) suture.ServiceToken {
	return t.live.Add(svc)
}

// AddWorker adds a service to the worker layer.
func (t *Tree) AddWorker(svc suture.Service) suture.ServiceToken {
	return t.workers.Add(svc)
}

// ServeBackground starts the tree; the channel yields the result once it stops.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
