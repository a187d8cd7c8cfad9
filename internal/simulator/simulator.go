// Package simulator fabricates usage records for users who opted in and
// announces each one to live subscribers.
package simulator

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/live"
	"effisense-go/internal/model"
	"effisense-go/pkg/log"
	"effisense-go/pkg/metrics"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

const publishTimeout = 5 * time.Second

// contextNotes are sampled uniformly; the nil entries leave the note empty.
var contextNotes = []*string{
	ptr("Regular evening use"),
	ptr("Quick morning check"),
	ptr("Left on accidentally"),
	ptr("Weekend binge watching"),
	ptr("Holiday cooking prep"),
	ptr("Running while away"),
	ptr("Testing new settings"),
	ptr("Background process"),
	nil, nil, nil, nil, nil,
}

func ptr(s string) *string { return &s }

// Target is a user the simulator writes for, with their chosen interval.
type Target struct {
	UserID          uint
	IntervalSeconds int
}

// Store is the persistence the simulator needs.
type Store interface {
	EnabledUsers(ctx context.Context) ([]Target, error)
	// AppliancesForUser returns the user's appliances with Home loaded.
	AppliancesForUser(ctx context.Context, userID uint) ([]model.Appliance, error)
	CreateUsage(ctx context.Context, usage *model.Usage) error
}

// Config tunes the loop.
type Config struct {
	IdleInterval time.Duration // delay when no user is enabled
	ErrorBackoff time.Duration // delay after a tick-level failure
	MaxEnergyKWh float64
}

// ConfigFrom converts the YAML settings, applying defaults to zero values.
func ConfigFrom(cfg config.SimulationConfig) Config {
	c := Config{
		IdleInterval: time.Duration(cfg.IdleIntervalSeconds) * time.Second,
		ErrorBackoff: time.Duration(cfg.ErrorBackoffSeconds) * time.Second,
		MaxEnergyKWh: cfg.MaxEnergyKWh,
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = 5 * time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = 60 * time.Second
	}
	if c.MaxEnergyKWh <= 0 {
		c.MaxEnergyKWh = 5
	}
	return c
}

// Simulator is a suture.Service. It is not safe to run Tick concurrently.
type Simulator struct {
	store     Store
	publisher live.Publisher
	cfg       Config
	rng       *rand.Rand
	now       func() time.Time
}

// New creates a Simulator. A nil rng is seeded from the clock.
func New(store Store, publisher live.Publisher, cfg Config, rng *rand.Rand) *Simulator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return &Simulator{store: store, publisher: publisher, cfg: cfg, rng: rng, now: time.Now}
}

// Serve runs ticks until ctx is cancelled. Cancellation interrupts the wait
// between ticks; a tick in progress finishes the user it is writing for.
func (s *Simulator) Serve(ctx context.Context) error {
	log.Info("usage simulator started")
	for {
		delay := s.Tick(ctx)
		if ctx.Err() != nil {
			log.Info("usage simulator stopped")
			return ctx.Err()
		}
		metrics.SimulatorNextDelay.Set(delay.Seconds())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("usage simulator stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Simulator) String() string {
	return "usage-simulator"
}

// Tick writes one usage for every enabled user and returns the delay before the next tick:
// the smallest user interval (at least one second), IdleInterval when nobody is enabled,
// or ErrorBackoff when the enabled users could not be loaded.
func (s *Simulator) Tick(ctx context.Context) time.Duration {
	targets, err := s.store.EnabledUsers(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("simulator: failed to load enabled users", err)
		}
		metrics.SimulatorTicks.WithLabelValues("error").Inc()
		return s.cfg.ErrorBackoff
	}
	if len(targets) == 0 {
		metrics.SimulatorTicks.WithLabelValues("idle").Inc()
		return s.cfg.IdleInterval
	}

	delay := time.Duration(math.MaxInt64)
	for _, t := range targets {
		interval := time.Duration(t.IntervalSeconds) * time.Second
		if interval < time.Second {
			interval = time.Second
		}
		if interval < delay {
			delay = interval
		}

		// Stop between users, never in the middle of one.
		if ctx.Err() != nil {
			break
		}
		if err := s.simulateUser(ctx, t.UserID); err != nil {
			metrics.SimulatorUserErrors.Inc()
			log.Warnw("simulator: skipped user", "userId", t.UserID, "error", err)
		}
	}
	metrics.SimulatorTicks.WithLabelValues("ok").Inc()
	return delay
}

func (s *Simulator) simulateUser(ctx context.Context, userID uint) error {
	appliances, err := s.store.AppliancesForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load appliances: %w", err)
	}
	if len(appliances) == 0 {
		log.Debugf("simulator: user %d has no appliances", userID)
		return nil
	}

	appliance := appliances[s.rng.IntN(len(appliances))]
	usage := s.fabricate(userID, &appliance)

	// Once started, the write and its announcement run to completion.
	writeCtx := context.WithoutCancel(ctx)
	if err := s.store.CreateUsage(writeCtx, usage); err != nil {
		return fmt.Errorf("create usage: %w", err)
	}
	metrics.SimulatedUsages.Inc()

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(writeCtx, publishTimeout)
		defer cancel()
		if err := s.publisher.PublishUsageCreated(pubCtx, model.NewUsageEvent(usage, &appliance)); err != nil {
			log.Warnw("simulator: usage event not delivered to every sink", "usageId", usage.ID, "error", err)
		}
	}
	return nil
}

func (s *Simulator) fabricate(userID uint, appliance *model.Appliance) *model.Usage {
	now := s.now().UTC()
	usage := &model.Usage{
		UserID:         userID,
		ApplianceID:    appliance.ID,
		Date:           now,
		Time:           now,
		EnergyUsed:     math.Round(s.rng.Float64()*s.cfg.MaxEnergyKWh*100) / 100,
		UsageFrequency: model.UsageFrequency(s.rng.IntN(5) + 1),
		ContextNotes:   contextNotes[s.rng.IntN(len(contextNotes))],
	}
	if appliance.IconClass != "" {
		icon := appliance.IconClass
		usage.IconClass = &icon
	}
	return usage
}
