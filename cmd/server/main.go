// Package main is the EffiSense web server.
package main

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/handler"
	"effisense-go/internal/live"
	"effisense-go/internal/middleware"
	"effisense-go/internal/repository"
	"effisense-go/internal/service"
	"effisense-go/internal/simulator"
	"effisense-go/internal/supervisor"
	"effisense-go/pkg/database"
	"effisense-go/pkg/kafka"
	"effisense-go/pkg/llm"
	"effisense-go/pkg/log"
	"effisense-go/pkg/mqtt"
	"effisense-go/pkg/token"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "path to the YAML configuration")
	flag.Parse()

	// 1. Config
	config.Init(*configPath)
	cfg := config.Conf

	// 2. Logger
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("logger initialized")

	// 3. Datastores
	database.Init(cfg.Database)
	defer database.Close(database.DB)
	if err := database.Migrate(database.DB); err != nil {
		log.Fatal("database migration failed", err)
	}
	var blacklist repository.TokenBlacklist
	if cfg.Database.Redis.Addr != "" {
		database.InitRedis(cfg.Database.Redis)
		defer database.RDB.Close()
		blacklist = repository.NewTokenBlacklist(database.RDB)
	} else {
		log.Warnw("redis not configured, logout revocations are kept in memory")
		blacklist = repository.NewMemoryTokenBlacklist()
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(database.DB)
	homeRepo := repository.NewHomeRepository(database.DB)
	applianceRepo := repository.NewApplianceRepository(database.DB)
	usageRepo := repository.NewUsageRepository(database.DB)
	chatRepo := repository.NewChatRepository(database.DB)

	// 5. Live update sinks
	hub := live.NewHub()
	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddLiveService(hub)

	delivery := live.Sink{Name: "hub", Publisher: hub}
	if cfg.Live.RedisChannel != "" && database.RDB != nil {
		relay := live.NewRedisRelay(database.RDB, cfg.Live.RedisChannel, hub)
		tree.AddLiveService(relay)
		delivery = live.Sink{Name: "redis", Publisher: relay}
	}
	sinks := []live.Sink{delivery}

	if writer := kafka.NewUsageEventWriter(cfg.Kafka); writer != nil {
		defer writer.Close()
		sinks = append(sinks, live.Sink{Name: "kafka", Publisher: writer})
	}
	mqttPublisher, err := mqtt.New(cfg.MQTT)
	if err != nil {
		log.Error("mqtt publisher disabled", err)
	} else if mqttPublisher != nil {
		defer mqttPublisher.Close()
		sinks = append(sinks, live.Sink{Name: "mqtt", Publisher: mqttPublisher})
	}
	publisher := live.NewFanout(sinks...)
	log.Infow("live sinks configured", "sinks", publisher.Sinks())

	// 6. Services
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	llmClient := llm.NewClient(cfg.LLM)
	pageSize := cfg.Pagination.PageSize

	userService := service.NewUserService(userRepo, blacklist, jwtManager)
	if err := userService.EnsureAdmin(cfg.Admin); err != nil {
		log.Error("failed to seed admin account", err)
	}
	services := handler.Services{
		Users:            userService,
		Homes:            service.NewHomeService(homeRepo, applianceRepo, pageSize),
		Appliances:       service.NewApplianceService(applianceRepo, homeRepo, pageSize),
		Usages:           service.NewUsageService(usageRepo, applianceRepo, publisher, pageSize),
		Charts:           service.NewChartService(usageRepo),
		Assistant:        service.NewAssistantService(homeRepo, usageRepo, chatRepo, llmClient, cfg.Assistant, cfg.LLM.Prompt.System),
		Seeds:            service.NewSeedService(repository.NewUnitOfWork(database.DB), llmClient, nil),
		Hub:              hub,
		DB:               database.DB,
		SessionTTL:       jwtManager.TokenDuration(),
		SecureCookies:    cfg.Server.SecureCookies,
		AssistantLimiter: middleware.NewUserRateLimiter(cfg.Assistant.RatePerMinute, cfg.Assistant.Burst),
	}

	// 7. Background workers
	if cfg.Simulation.Enabled {
		store := simulator.NewStore(userRepo, applianceRepo, usageRepo)
		tree.AddWorker(simulator.New(store, publisher, simulator.ConfigFrom(cfg.Simulation), nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	treeDone := tree.ServeBackground(ctx)

	// 8. Router
	gin.SetMode(cfg.Server.Mode)
	r, err := handler.NewRouter(services)
	if err != nil {
		log.Fatal("failed to build router", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	// Stop the simulator and close every live session before the listener.
	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", err)
	}
	select {
	case err := <-treeDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("supervisor stopped with error", err)
		}
	case <-shutdownCtx.Done():
		if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
			log.Warnw("services did not stop in time", "services", fmt.Sprint(report))
		}
	}
	log.Info("server stopped")
}
