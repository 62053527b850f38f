package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/triviatastic/triviatastic/pkg/api"
	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/repositories"
	"github.com/triviatastic/triviatastic/pkg/version"
	"golang.org/x/sync/errgroup"
)

type config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"triviatastic.db"`
	Migrations  string `env:"MIGRATIONS_PATH" envDefault:"migrations/sqlite"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	_ = godotenv.Load()

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		panic(fmt.Sprintf("Failed to parse environment: %v", err))
	}

	port := flag.Int("port", cfg.Port, "Port to listen on")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting blob server version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repository repositories.Repository
	if cfg.DatabaseURL != "" {
		repository = repositories.NewPostgresRepository(ctx, cfg.DatabaseURL)
	} else {
		repository, err = repositories.NewSQLiteRepository(ctx, cfg.SQLitePath, cfg.Migrations)
		if err != nil {
			panic(fmt.Sprintf("Failed to open repository: %v", err))
		}
	}
	defer repository.Close(ctx)

	server := api.NewBlobServer(api.NewBlobServerOptions{
		Port:       *port,
		Repository: repository,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error: %v", err)
		os.Exit(1)
	}
}
