package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	healthhandler "geodados/ms_municipios/internal/adapters/http/health"
	municipalityhandler "geodados/ms_municipios/internal/adapters/http/municipality"
	"geodados/ms_municipios/internal/adapters/municipality/memory"
	mongorepo "geodados/ms_municipios/internal/adapters/municipality/mongo"
	postgresrepo "geodados/ms_municipios/internal/adapters/municipality/postgres"
	application "geodados/ms_municipios/internal/application/municipality"
	core "geodados/ms_municipios/internal/core/municipality"
	"geodados/ms_municipios/internal/infrastructure/config"
	"geodados/ms_municipios/internal/infrastructure/database"
	"geodados/ms_municipios/internal/infrastructure/http/server"
	"geodados/ms_municipios/internal/infrastructure/logger"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo  core.Repository
		store healthhandler.Pinger
	)

	switch cfg.Store.Engine {
	case config.EnginePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Store.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo, err = postgresrepo.NewRepository(ctx, pool, log)
		if err != nil {
			return err
		}
		store = healthhandler.PingerFunc(pool.Ping)
		log.Info("store ready", "engine", config.EnginePostgres, "database", cfg.Store.Postgres.Database)

	case config.EngineMongo:
		client, err := database.NewMongoClient(ctx, cfg.Store.Mongo)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("mongodb disconnect failed", "error", err)
			}
		}()

		repo, err = mongorepo.NewRepository(ctx, client.Database(cfg.Store.Mongo.Database), log)
		if err != nil {
			return err
		}
		store = healthhandler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		})
		log.Info("store ready", "engine", config.EngineMongo, "database", cfg.Store.Mongo.Database)

	case config.EngineMemory:
		repo = memory.NewRepository()
		log.Info("store ready", "engine", config.EngineMemory)
	}

	service := application.NewService(repo)

	router := server.NewRouter(server.RouterDeps{
		Municipality: municipalityhandler.NewHandler(service, log),
		Health: healthhandler.NewHandler(healthhandler.Metadata{
			Name:        cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			StoreEngine: cfg.Store.Engine,
		}, store, log),
		RateLimit: cfg.RateLimit,
		StaticDir: cfg.HTTP.StaticDir,
		Logger:    log,
	})

	srv := server.New(cfg.HTTP, router, log)
	return srv.Run(ctx)
}
