// Package main is the entry point of the Wordle community bot.
//
// The layout follows Clean Architecture:
//   - domain: parsing, aggregation and ranking logic, no external deps
//   - application: commands, queries and event handlers (CQRS)
//   - infrastructure: persistence, cache, event bus, scheduler
//   - interface: the Discord surface
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wordler-hub/wordler-community-hub/config"
	"github.com/wordler-hub/wordler-community-hub/internal/application/command"
	"github.com/wordler-hub/wordler-community-hub/internal/application/eventhandler"
	"github.com/wordler-hub/wordler-community-hub/internal/application/query"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
	"github.com/wordler-hub/wordler-community-hub/internal/infrastructure/messaging"
	"github.com/wordler-hub/wordler-community-hub/internal/infrastructure/persistence/jsonfile"
	"github.com/wordler-hub/wordler-community-hub/internal/infrastructure/persistence/postgres"
	"github.com/wordler-hub/wordler-community-hub/internal/infrastructure/persistence/redis"
	"github.com/wordler-hub/wordler-community-hub/internal/infrastructure/scheduler"
	"github.com/wordler-hub/wordler-community-hub/internal/infrastructure/scheduler/jobs"
	"github.com/wordler-hub/wordler-community-hub/internal/interface/discord"
	"github.com/wordler-hub/wordler-community-hub/internal/interface/discord/handler"
	"github.com/wordler-hub/wordler-community-hub/internal/interface/discord/presenter"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting wordle community bot",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"storage", cfg.Storage.Backend)

	// ─────────────────────────────────────────────────────────────────────────
	// STATS STORE
	// ─────────────────────────────────────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// ─────────────────────────────────────────────────────────────────────────
	// LEADERBOARD CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var lbCache leaderboard.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		var cache *redis.Cache
		var err error
		if cfg.Redis.URL != "" {
			cache, err = redis.NewCacheFromURL(cfg.Redis.URL, redisCfg)
		} else {
			cache, err = redis.NewCache(redisCfg)
		}
		if err != nil {
			log.Warn("redis unavailable, leaderboard caching disabled", "error", err)
		} else {
			defer cache.Close()
			lbCache = redis.NewLeaderboardCache(cache)
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		if err := bus.Close(); err != nil {
			log.Warn("event bus close failed", "error", err)
		}
	}()

	if lbCache != nil {
		invalidator := eventhandler.NewOnResultRecordedHandler(lbCache, log)
		if err := invalidator.Register(bus); err != nil {
			return fmt.Errorf("failed to register event handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	recordResult := command.NewRecordResultHandler(store, bus, log)
	updateSnapshot := command.NewUpdateLeaderboardSnapshotHandler(store, log)
	leaderboardQuery := query.NewGetLeaderboardHandler(store, lbCache, log)
	snapshotQuery := query.NewGetLeaderboardSnapshotHandler(store)
	summaryQuery := query.NewGetUserSummaryHandler(store, log)

	// ─────────────────────────────────────────────────────────────────────────
	// DISCORD SURFACE
	// ─────────────────────────────────────────────────────────────────────────
	showMovement := cfg.Features.IsEnabled(config.FeatureLeaderboardRankChange, nil)
	boards := presenter.NewLeaderboardPresenter(showMovement)
	cards := presenter.NewStatsCardPresenter()

	router := discord.NewRouter(cfg.Discord.CommandPrefix, log)

	bot, err := discord.NewBot(cfg.Discord, cfg.Features, router, nil, log)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	resolver := discord.NewGuildResolver(bot.Session())
	ingestor := discord.NewIngestor(recordResult, resolver, cfg.Features, log)
	bot.SetIngestor(ingestor)

	backfiller := discord.NewBackfiller(bot.Session(), ingestor, log,
		cfg.Discord.BackfillPageSize, cfg.Discord.BackfillMaxMessages)

	bot.RegisterCommands(discord.Dependencies{
		Stats:       handler.NewStatsHandler(summaryQuery, cards),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardQuery, snapshotQuery, boards, cfg.Leaderboard.Size),
		Help:        handler.NewHelpHandler(cfg.Discord.CommandPrefix),
		Backfiller:  backfiller,
	})

	if err := bot.Start(); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}
	defer func() {
		if err := bot.Stop(); err != nil {
			log.Warn("bot stop failed", "error", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = startScheduler(ctx, cfg, log, leaderboardQuery, snapshotQuery, updateSnapshot, bot, boards)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				log.Warn("scheduler stop failed", "error", err)
			}
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("wordle community bot is running",
		"watched_channel", cfg.Discord.ChannelID,
		"prefix", cfg.Discord.CommandPrefix)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.App.ShutdownTimeout.String())
	return nil
}

// openStore selects and initializes the configured stats store backend.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (stats.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
			MaxConns:        cfg.Database.MaxOpenConns,
			MinConns:        cfg.Database.MaxIdleConns,
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		store := postgres.NewStatsStore(conn, cfg.Database.QueryTimeout, log)
		if err := store.Load(ctx); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to initialize database schema: %w", err)
		}
		log.Info("postgres stats store ready")
		return store, func() {
			store.Close()
			conn.Close()
		}, nil

	default:
		store := jsonfile.New(cfg.Storage.DataPath, log)
		if err := store.Load(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to load stats snapshot: %w", err)
		}
		log.Info("json stats store ready", "path", cfg.Storage.DataPath)
		return store, func() { store.Close() }, nil
	}
}

// startScheduler registers and starts the background jobs.
func startScheduler(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	leaderboardQuery *query.GetLeaderboardHandler,
	snapshotQuery *query.GetLeaderboardSnapshotHandler,
	updateSnapshot *command.UpdateLeaderboardSnapshotHandler,
	bot *discord.Bot,
	boards *presenter.LeaderboardPresenter,
) (*scheduler.Scheduler, error) {
	schedCfg := scheduler.DefaultConfig()
	schedCfg.Logger = log
	schedCfg.JobTimeout = cfg.Scheduler.JobTimeout
	schedCfg.MaxConcurrentJobs = cfg.Scheduler.MaxConcurrentJobs
	sched := scheduler.New(schedCfg)

	if cfg.Features.IsEnabled(config.FeatureLeaderboardDailyPost, nil) {
		var postSchedule scheduler.Schedule
		if cron := cfg.Scheduler.PostCron; cron != "" {
			expr, err := scheduler.ParseCronExpression(cron)
			if err != nil {
				return nil, fmt.Errorf("invalid leaderboard post cron: %w", err)
			}
			postSchedule = expr
		} else {
			hour, minute, err := cfg.Scheduler.PostTimeOfDay()
			if err != nil {
				return nil, fmt.Errorf("invalid leaderboard post time: %w", err)
			}
			daily, err := scheduler.NewDailySchedule(hour, minute)
			if err != nil {
				return nil, err
			}
			postSchedule = daily
		}

		postChannel := cfg.Discord.PostChannelID
		if postChannel == "" {
			postChannel = cfg.Discord.ChannelID
		}
		poster := discord.NewLeaderboardPoster(bot.Session(), boards, postChannel)

		jobCfg := jobs.DefaultDailyLeaderboardConfig()
		jobCfg.Limit = cfg.Leaderboard.Size
		dailyJob := jobs.NewDailyLeaderboardJob(
			leaderboardQuery, snapshotQuery, updateSnapshot, poster, log, jobCfg)

		if err := sched.Register(dailyJob, postSchedule); err != nil {
			return nil, fmt.Errorf("failed to register daily leaderboard job: %w", err)
		}
	}

	refreshJob := jobs.NewRefreshLeaderboardJob(leaderboardQuery, log)
	refresh := scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshLeaderboardInterval)
	if err := sched.Register(refreshJob, refresh); err != nil {
		return nil, fmt.Errorf("failed to register refresh job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}
	return sched, nil
}

// setupLogger builds the process-wide structured logger.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug || cfg.Observability.LogLevel == "debug" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
