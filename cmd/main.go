package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobscout/internal/bot"
	"github.com/maxaizer/jobscout/internal/clients/gemini"
	"github.com/maxaizer/jobscout/internal/clients/websearch"
	"github.com/maxaizer/jobscout/internal/config"
	"github.com/maxaizer/jobscout/internal/enrichment"
	"github.com/maxaizer/jobscout/internal/extractors"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/metrics"
	"github.com/maxaizer/jobscout/internal/repositories"
	"github.com/maxaizer/jobscout/internal/resilience"
	"github.com/maxaizer/jobscout/internal/scoring"
	"github.com/maxaizer/jobscout/internal/services"
	log "github.com/sirupsen/logrus"
	"os/signal"
	"syscall"
)

func newSearchOracle(ctx context.Context, cfg *config.Config) services.SearchOracle {

	client := websearch.NewClient(cfg.Search.URL, cfg.Search.Key)
	client.SetGuard(resilience.NewGuard("websearch", cfg.Search.Retry))

	if cfg.Cache.RedisURL == "" {
		return websearch.NewCached(client, cfg.Cache.TTL)
	}

	redisClient, err := websearch.NewRedisClient(ctx, cfg.Cache.RedisURL)
	if err != nil {
		log.Warnf("redis unavailable, falling back to in-memory search cache: %v", err)
		return websearch.NewCached(client, cfg.Cache.TTL)
	}
	return websearch.NewRedisCached(client, redisClient, cfg.Cache.TTL)
}

func newOrchestrator(ctx context.Context, cfg *config.Config, bus EventBus.Bus, jobs *repositories.Jobs) (
	*services.Orchestrator, *gemini.Client) {

	aiClient, err := gemini.NewClient(ctx, cfg.AI.Key, gemini.Model(cfg.AI.Model))
	if err != nil {
		log.Fatalf("can't create AI client: %v", err)
	}
	aiClient.SetMinuteRateLimit(cfg.AI.MaxRequestsPerMinute)
	aiClient.SetDayRateLimit(cfg.AI.MaxRequestsPerDay)
	aiClient.SetGuard(resilience.NewGuard("gemini", cfg.AI.Retry))

	resume, err := cfg.Profile.Resume()
	if err != nil {
		log.Fatalf("can't load profile: %v", err)
	}

	orchestrator := services.NewOrchestrator(
		services.OrchestratorConfig{
			Workers:      cfg.Enrichment.Workers,
			BatchSize:    cfg.Enrichment.BatchSize,
			Lease:        cfg.Enrichment.Lease,
			MaxAttempts:  cfg.Enrichment.MaxAttempts,
			DeepAnalysis: cfg.Enrichment.DeepAnalysis,
			DefaultScore: cfg.Enrichment.DefaultScore,
		},
		bus,
		jobs,
		services.NewAIService(aiClient),
		newSearchOracle(ctx, cfg),
		scoring.NewEngine(cfg.Scoring.Config),
		enrichment.NewLogoResolver(cfg.Enrichment.LogoTemplate),
		services.Profile{Resume: resume, Preferences: cfg.Profile.Preferences},
	)
	return orchestrator, aiClient
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Logger.MetricsAddress)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	jobs := repositories.NewJobsRepository(dbContext.DB)
	feeds := repositories.NewFeedsRepository(dbContext.DB)
	bus := EventBus.New()

	orchestrator, aiClient := newOrchestrator(ctx, cfg, bus, jobs)
	defer aiClient.Close()

	registry := extractors.DefaultRegistry()
	intake := services.NewIntake(bus, registry, jobs, cfg.Profile.Preferences)

	var pollers []services.Poller
	if cfg.Intake.InboxDir != "" {
		pollers = append(pollers, services.NewInboxWatcher(cfg.Intake.InboxDir, registry.Sources(), intake))
	}
	if len(cfg.Intake.Feeds) > 0 {
		pollers = append(pollers, services.NewFeedPoller(cfg.Intake.Feeds, feeds, intake))
	}

	scheduler, err := services.NewScheduler(ctx, services.SchedulerConfig{
		SweepCron:  cfg.Enrichment.SweepCron,
		ReaperCron: cfg.Enrichment.ReaperCron,
		PollCron:   cfg.Intake.PollCron,
		BatchSize:  cfg.Enrichment.BatchSize,
		Lease:      cfg.Enrichment.Lease,
	}, orchestrator, jobs, pollers...)
	if err != nil {
		log.Fatalf("can't create scheduler: %v", err)
	}
	scheduler.Start()

	var tgbot *bot.Bot
	if cfg.Notifier.Enabled() {
		tgbot, err = bot.NewBot(cfg.Notifier.Token, cfg.Notifier.ChatID, cfg.Notifier.MinScore, bus,
			services.NewRanking(jobs), orchestrator)
		if err != nil {
			log.Fatalf("can't create bot: %v", err)
		}
		go tgbot.Run(ctx)
	}

	<-ctx.Done()

	log.Info("Shutting down services...")
	if tgbot != nil {
		tgbot.Stop()
	}
	scheduler.Stop()
	bus.WaitAsync()
	log.Info("Services stopped.")
}
