package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/joho/godotenv"

	"github.com/Ashenafi-pixel/guaguale"
	"github.com/Ashenafi-pixel/guaguale/config"
	"github.com/Ashenafi-pixel/guaguale/events"
	"github.com/Ashenafi-pixel/guaguale/game"
	"github.com/Ashenafi-pixel/guaguale/history"
	"github.com/Ashenafi-pixel/guaguale/kv"
	"github.com/Ashenafi-pixel/guaguale/prizepool"
	"github.com/Ashenafi-pixel/guaguale/rng"
	"github.com/Ashenafi-pixel/guaguale/scratch"
	"github.com/Ashenafi-pixel/guaguale/server"
)

func main() {
	// .env in the working directory first, then the project root.
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	_ = godotenv.Load("../.env.local")
	cfg := config.Load()

	// Errors always reach stderr; LOG_VERBOSE adds info and warnings on stdout.
	defer logger.Init("guaguale", cfg.LogVerbose, false, io.Discard).Close()
	if !cfg.LogVerbose {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	broadcaster := events.NewBroadcaster(0)
	sinks := events.Multi{broadcaster}
	if cfg.NATSURL != "" {
		nc, err := events.Connect(cfg.NATSURL, "guaguale")
		if err != nil {
			return fmt.Errorf("connect nats %s: %w", cfg.NATSURL, err)
		}
		defer nc.Drain()
		sinks = append(sinks, events.NewNATSPublisher(nc, cfg.NATSPrefix))
		logger.Infof("publishing reveal events to %s.<session>.reveal", cfg.NATSPrefix)
	}

	var defaults []prizepool.Prize
	if cfg.PrizesFile != "" {
		defaults, err = prizepool.LoadYAML(cfg.PrizesFile)
		if err != nil {
			return err
		}
		logger.Infof("loaded %d default prizes from %s", len(defaults), cfg.PrizesFile)
	}

	results := history.NewResultsStore(cfg.DataDir)
	policy := scratch.Policy{
		GridWidth:   cfg.GridWidth,
		GridHeight:  cfg.GridHeight,
		BrushRadius: cfg.BrushRadius,
		Threshold:   cfg.RevealThreshold,
		Window:      cfg.RevealWindow,
	}.Normalized()
	factory := func(id string) *game.Session {
		return game.New(id, game.Options{
			Backend:       backend,
			Sink:          sinks,
			Recorder:      results,
			RNG:           rng.Crypto{},
			Policy:        policy,
			ItemsPerPage:  cfg.ItemsPerPage,
			DefaultPrizes: defaults,
		})
	}

	registry := server.NewRegistry(factory, cfg.IdleTimeout)
	go registry.RunJanitor(ctx, 10*time.Minute)
	return server.New(cfg, registry, broadcaster, results).Run(ctx)
}

func openBackend(ctx context.Context, cfg *config.Config) (kv.Backend, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := guaguale.GetDB()
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if db == nil {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
		pg := kv.NewPostgresBackend(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("storing sessions in postgres")
		return pg, nil
	case config.StoreMemory:
		logger.Warning("storing sessions in memory; state is lost on restart")
		return kv.NewMemoryBackend(), nil
	default:
		logger.Infof("storing sessions under %s", cfg.DataDir)
		return kv.NewFileBackend(cfg.DataDir), nil
	}
}
