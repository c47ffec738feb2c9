package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"transport-simulator/internal/adapters/cache"
	"transport-simulator/internal/adapters/directions"
	"transport-simulator/internal/adapters/fleet"
	"transport-simulator/internal/adapters/repositories"
	"transport-simulator/internal/api"
	"transport-simulator/internal/config"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/platform/db"
	"transport-simulator/internal/ports"
	"transport-simulator/internal/services"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (SQLite/Postgres, Redis, ORS, Kafka) behind ports,
// builds the loop and runs the movement ticker alongside the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("simulator exited", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger = logger.With(zap.String("transport_id", cfg.Loop.TransportID))

	localDB, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer localDB.Close()

	if err := repositories.InitSchema(ctx, localDB); err != nil {
		return err
	}

	geocodeCache, closeGeocode, err := newGeocodeCache(ctx, cfg, localDB, logger)
	if err != nil {
		return err
	}
	defer closeGeocode()

	routeCache, closeRoutes := newRouteCache(ctx, cfg, localDB, logger)
	defer closeRoutes()

	ors, err := directions.NewORSDirectionsProvider(cfg.ORSAPIKey, cfg.ORSProfile, geocodeCache, logger)
	if err != nil {
		return err
	}
	provider := directions.NewCachingDirectionsProvider(ors, routeCache, logger)

	waypoints := make([]domain.Location, 0, len(cfg.Loop.Waypoints))
	for _, w := range cfg.Loop.Waypoints {
		waypoints = append(waypoints, domain.AddressLocation(w))
	}

	loop, err := services.BuildLoop(ctx, provider, waypoints, logger)
	if err != nil {
		return err
	}

	engineCfg := services.EngineConfig{
		Delta:           cfg.Delta,
		Epsilon:         cfg.Epsilon,
		HoldUntilRouted: cfg.HoldUntilRouted,
	}

	var fleetClient *fleet.KafkaFleetClient
	var commodities ports.CommodityNotifier
	if cfg.Kafka.Enabled() {
		fleetClient, err = fleet.NewKafkaFleetClient(cfg.Kafka, cfg.Loop.TransportID, logger)
		if err != nil {
			return err
		}
		commodities = fleetClient
	} else {
		logger.Warn("no kafka brokers configured, running without a fleet")
	}

	engine, err := services.NewMovementEngine(loop, provider, commodities, engineCfg, logger.Named("engine"))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if fleetClient != nil {
		engine.Attach(fleetClient)

		metadata := map[string]any{"mpg": cfg.Loop.MPG, "capacity": cfg.Loop.Capacity}
		if err := fleetClient.Register(ctx, engine.Start(), metadata); err != nil {
			fleetClient.Close()
			return err
		}

		g.Go(func() error {
			return fleetClient.Consume(gctx, engine.OnActionsAssigned)
		})
	}

	g.Go(func() error {
		return engine.Run(gctx, cfg.TickInterval)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(engine, logger.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Assigning actions may wait on a cold route fetch.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	// Report offline before the writer is flushed and closed.
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	engine.Stop(stopCtx)

	if fleetClient != nil {
		if err := fleetClient.Close(); err != nil {
			logger.Warn("closing fleet client", zap.Error(err))
		}
	}

	logger.Info("simulator stopped")
	return runErr
}

// newGeocodeCache prefers the shared Postgres cache and falls back to the local SQLite one.
func newGeocodeCache(ctx context.Context, cfg *config.Config, localDB *sql.DB, logger *zap.Logger) (ports.GeocodeCache, func(), error) {
	if cfg.DatabaseURL == "" {
		return cache.NewSqliteGeocodeCache(localDB), func() {}, nil
	}

	pg, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitPostgresSchema(ctx, pg); err != nil {
		pg.Close()
		return nil, nil, err
	}

	logger.Info("using postgres geocode cache")
	return cache.NewSQLGeocodeCache(pg, logger), func() { pg.Close() }, nil
}

// newRouteCache prefers Redis and falls back to SQLite when it is not configured or unreachable.
func newRouteCache(ctx context.Context, cfg *config.Config, localDB *sql.DB, logger *zap.Logger) (ports.RouteCache, func()) {
	local := cache.NewSqliteRouteCache(localDB, cfg.RouteCacheTTL)
	if cfg.RedisAddr == "" {
		return local, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, using sqlite route cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		client.Close()
		return local, func() {}
	}

	logger.Info("using redis route cache", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedisRouteCache(client, cfg.RouteCacheTTL), func() { client.Close() }
}
