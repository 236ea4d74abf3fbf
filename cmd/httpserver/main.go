package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nhdewitt/static-from-tcp/internal/config"
	"github.com/nhdewitt/static-from-tcp/internal/fileserver"
	"github.com/nhdewitt/static-from-tcp/internal/server"
	"github.com/nhdewitt/static-from-tcp/internal/static"
	"github.com/rs/zerolog"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		host       = flag.String("host", "", "host to listen on (default localhost)")
		port       = flag.Int("port", 0, "port to listen on (default 8080)")
		root       = flag.String("root", "", "directory to serve files from (default www)")
	)
	flag.Parse()

	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("error loading config")
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *root != "" {
		cfg.Static.Root = *root
	}
	if err := cfg.Validate(); err != nil {
		bootLogger.Fatal().Err(err).Msg("invalid config")
	}

	logger := newLogger(cfg)

	fsys, err := static.NewRoot(cfg.Static.Root, cfg.Static.MaxFileSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening static root")
	}

	handler := fileserver.New(fsys, fileserver.Options{
		DecodePath: cfg.Static.DecodePath,
		Logger:     logger,
	})

	srv, err := server.Serve(cfg.Address(), handler.Serve, server.Options{
		ReadBufferSize: cfg.Server.ReadBufferSize,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		Sequential:     cfg.Server.Sequential,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting server")
	}
	logger.Info().
		Str("addr", srv.Addr().String()).
		Str("root", fsys.Dir()).
		Msg("server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := srv.Close(); err != nil {
		logger.Warn().Err(err).Msg("error closing listener")
	}
	logger.Info().Msg("server gracefully stopped")
}
