package main

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/live"
	"effisense-go/internal/repository"
	"effisense-go/internal/simulator"
	"effisense-go/pkg/database"
	"effisense-go/pkg/kafka"
	"effisense-go/pkg/log"
	"effisense-go/pkg/mqtt"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var simulateTicks int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the usage simulator in the foreground",
	Long: `Runs the usage simulator for every account with simulation enabled until
interrupted, or for --ticks ticks. Events reach running servers through the
configured Redis channel and the optional Kafka and MQTT sinks.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulateTicks, "ticks", 0, "stop after this many ticks (0 runs until interrupted)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := openDB(); err != nil {
		return err
	}
	defer database.Close(database.DB)
	cfg := config.Conf

	var sinks []live.Sink
	if cfg.Live.RedisChannel != "" && cfg.Database.Redis.Addr != "" {
		database.InitRedis(cfg.Database.Redis)
		defer database.RDB.Close()
		// Without a local hub the relay only publishes.
		sinks = append(sinks, live.Sink{Name: "redis", Publisher: live.NewRedisRelay(database.RDB, cfg.Live.RedisChannel, nil)})
	}
	if writer := kafka.NewUsageEventWriter(cfg.Kafka); writer != nil {
		defer writer.Close()
		sinks = append(sinks, live.Sink{Name: "kafka", Publisher: writer})
	}
	if publisher, err := mqtt.New(cfg.MQTT); err != nil {
		return fmt.Errorf("connecting mqtt: %w", err)
	} else if publisher != nil {
		defer publisher.Close()
		sinks = append(sinks, live.Sink{Name: "mqtt", Publisher: publisher})
	}

	store := simulator.NewStore(
		repository.NewUserRepository(database.DB),
		repository.NewApplianceRepository(database.DB),
		repository.NewUsageRepository(database.DB),
	)
	sim := simulator.New(store, live.NewFanout(sinks...), simulator.ConfigFrom(cfg.Simulation), nil)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if simulateTicks <= 0 {
		log.Infow("simulator running", "sinks", len(sinks))
		if err := sim.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	for i := 0; i < simulateTicks; i++ {
		delay := sim.Tick(ctx)
		fmt.Printf("tick %d done, next in %s\n", i+1, delay)
		if i == simulateTicks-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
	return nil
}
