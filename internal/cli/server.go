package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chemguess-service/internal/app"
	"chemguess-service/internal/config"
	"chemguess-service/internal/infra/memory"
	"chemguess-service/internal/infra/postgres"
	infraredis "chemguess-service/internal/infra/redis"
	"chemguess-service/internal/infra/sqlite"
	"chemguess-service/internal/selector"
	transport "chemguess-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var (
		pool *pgxpool.Pool
		db   *bun.DB
	)
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		db = openBun(cfg.Postgres.URL)
		defer db.Close()
	}

	loader, err := compoundLoader(cfg, pool)
	if err != nil {
		return err
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs interface {
		app.CatalogRepository
		selector.Source
	}
	if redisClient != nil {
		catalogs = infraredis.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var draw app.Selector
	if redisClient != nil && cfg.Catalog.SharedBag {
		draw = infraredis.NewBag(redisClient, catalogs, cfg.Catalog.BagSize)
	} else {
		draw = selector.New(catalogs, selector.WithSize(cfg.Catalog.BagSize))
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	var scores app.ScoreRepository
	switch {
	case db != nil:
		scores = postgres.NewScoreStore(db)
	case redisClient != nil:
		scores = infraredis.NewScoreStore(redisClient)
	default:
		scores = memory.NewScoreStore()
	}

	var logRepo app.LogRepository = memory.NewLogStore()
	if cfg.Logs.SQLitePath != "" {
		sqliteLogs, err := sqlite.NewLogStore(cfg.Logs.SQLitePath)
		if err != nil {
			return err
		}
		defer sqliteLogs.Close()
		logRepo = sqliteLogs
	}

	logs := app.NewLogService(logRepo, cfg.Logs.MaxPerPlayer)
	board := app.NewLeaderboardService(scores)
	limits := app.Limits{
		MaxAttempts: cfg.Game.MaxAttempts,
		MaxDuration: config.TTLDuration(cfg.Game.MaxDuration, app.DefaultLimits.MaxDuration),
	}
	results := app.NewAsyncSink(app.NewResultRecorder(logs, board), app.DefaultSinkBuffer)
	games := app.NewGameService(store, catalogs, draw, results, app.WithLimits(limits))

	if _, err := games.Compounds(ctx); err != nil {
		log.Printf("catalog not loaded yet: %v", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweep(sweepCtx, games, config.TTLDuration(cfg.Game.Retain, 10*time.Minute))

	api := transport.NewAPIHandler(games, board, logs)
	wsHandler := transport.NewWSHandler(games)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(api, wsHandler),
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: it would cut long-lived websockets
	}

	go func() {
		log.Printf("starting chemguess service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	stopSweep()
	if cerr := results.Close(shutdownCtx); cerr != nil {
		log.Printf("flush session results: %v", cerr)
	}
	return err
}

// sweep ends expired sessions every second and drops finished ones after retain.
func sweep(ctx context.Context, games *app.GameService, retain time.Duration) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := games.SweepTimeouts(ctx); n > 0 {
				log.Printf("timed out %d session(s)", n)
			}
			games.PruneFinished(ctx, retain)
		case <-ctx.Done():
			return
		}
	}
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
