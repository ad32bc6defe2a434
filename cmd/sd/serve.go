package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/zulandar/sprintdeck/internal/config"
	"github.com/zulandar/sprintdeck/internal/db"
	"github.com/zulandar/sprintdeck/internal/notify"
	"github.com/zulandar/sprintdeck/internal/notify/discord"
	"github.com/zulandar/sprintdeck/internal/notify/slack"
	"github.com/zulandar/sprintdeck/internal/server"
	"github.com/zulandar/sprintdeck/internal/velocity"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Sprintdeck API server",
		Long:  "Starts the HTTP API and the periodic velocity refresher. Stops cleanly on SIGINT/SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sprintdeck.yaml", "path to Sprintdeck config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	// Secrets come from the environment, never the config file.
	godotenv.Load()

	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	log := newLogger(cfg.Server.LogFile)

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	fanout := &notify.Fanout{Log: log}
	if token := os.Getenv("SLACK_TOKEN"); token != "" && cfg.Notify.SlackChannel != "" {
		n, err := slack.New(token, cfg.Notify.SlackChannel)
		if err != nil {
			return fmt.Errorf("configure slack: %w", err)
		}
		fanout.Notifiers = append(fanout.Notifiers, n)
	}
	if token := os.Getenv("DISCORD_TOKEN"); token != "" && cfg.Notify.DiscordChannel != "" {
		n, err := discord.New(token, cfg.Notify.DiscordChannel)
		if err != nil {
			return fmt.Errorf("configure discord: %w", err)
		}
		fanout.Notifiers = append(fanout.Notifiers, n)
	}
	log.Info().Int("notifiers", len(fanout.Notifiers)).Msg("notifications configured")

	srv, err := server.New(server.Opts{
		DB:               gormDB,
		DefaultVelocity:  cfg.Velocity.Default,
		DefaultAvgPoints: cfg.Planning.DefaultAvgPoints,
		MaxItemPoints:    cfg.Planning.MaxItemPoints,
		Fanout:           fanout,
		Log:              log,
	})
	if err != nil {
		return err
	}

	refresher := &velocity.Refresher{DB: gormDB, Default: cfg.Velocity.Default, Log: log}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Velocity.RefreshCron, func() {
		if err := refresher.RefreshAll(); err != nil {
			log.Warn().Err(err).Msg("scheduled velocity refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule velocity refresh %q: %w", cfg.Velocity.RefreshCron, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx, cfg.Server.Port)
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Sprintdeck API listening on :%d\n", cfg.Server.Port)
	return g.Wait()
}

// loadConfigOrDefault falls back to built-in defaults when the config file
// does not exist, so a bare `sd serve` works against local sqlite.
func loadConfigOrDefault(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger writes console output to stderr, plus a rotated file when one is
// configured.
func newLogger(logFile string) zerolog.Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if logFile != "" {
		w = zerolog.MultiLevelWriter(w, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		})
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
