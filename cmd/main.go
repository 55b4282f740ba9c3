package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "liquid_handler/docs"
	"liquid_handler/internal/config"
	"liquid_handler/internal/driver"
	"liquid_handler/internal/handlers"
	"liquid_handler/internal/logger"
	"liquid_handler/internal/network"
	"liquid_handler/internal/repository"
	"liquid_handler/internal/repository/db"
	"liquid_handler/internal/server"
	"liquid_handler/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

// @title        Liquid Handler API
// @version      1.0
// @description  Control and status API for the dual-pump liquid handler.
// @BasePath     /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "pumpd",
		Short:         "pumpd drives the peristaltic and vacuum pumps and serves the control API",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default configs/config.yml)")
	flags.String("port", "", "HTTP listen port")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("backend", "", "GPIO backend: sim or rpio")
	flags.String("journal", "", "sqlite journal path, :memory: for none")
	bindFlags(v, cmd, map[string]string{
		"port":      "server.port",
		"log-level": "logging.level",
		"backend":   "hardware.backend",
		"journal":   "journal.path",
	})
	return cmd
}

// bindFlags lets a flag override the config file only when it is set.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

func run(parent context.Context, cfg *config.Config) error {
	log := logger.Init(logger.Options{
		Level:      cfg.Logging.Level,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	defer func() { _ = log.Sync() }()

	// motor driver
	backend, err := driver.NewBackend(cfg.Hardware.Backend)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Hardware.Backend, err)
	}
	bridge, err := driver.NewBridge(backend, cfg.Hardware.BridgeConfig())
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("configure bridge: %w", err)
	}
	defer func() {
		if cerr := bridge.Close(); cerr != nil {
			log.Errorw("bridge_close_failed", "err", cerr)
		}
	}()
	bridge.Reset()
	log.Infow("bridge_ready", "backend", cfg.Hardware.Backend)

	// journal
	conn, err := db.InitDB(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("journal_close_failed", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, bridge, log)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// network bootstrap blocks boot, but its outcome never stops the pumps
	// from being usable
	netw := network.NewManager(cfg.Network.Interface, cfg.Network.Attempts, cfg.Network.RetryDelay, log)
	if !netw.Connect(ctx) {
		log.Warnw("network_unavailable", "address", netw.Address())
	}

	// poller
	pollCtx, cancelPoll := context.WithCancel(ctx)
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		services.Poller.Run(pollCtx, cfg.Poller.Interval)
	}()

	// HTTP
	if cfg.Logging.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	apiHandler := handlers.NewHandler(services, log,
		handlers.WithNetwork(netw),
		handlers.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
	)
	srv := &server.Server{}
	srvErr := make(chan error, 1)
	go func() {
		log.Infow("http_listening", "port", cfg.Server.Port, "address", netw.Address())
		srvErr <- srv.Run(cfg.Server.Port, apiHandler.InitRoutes())
	}()

	select {
	case <-ctx.Done():
		log.Infow("shutdown_requested")
	case err = <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("http_server_failed", "err", err)
		}
	}

	// no new commands past this point
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Errorw("server_forced_shutdown", "err", serr)
	}

	// stop background goroutines, then leave the pumps stopped
	cancelPoll()
	<-pollDone
	haltCtx := context.Background()
	services.Peristaltic.Halt(haltCtx)
	services.Vacuum.Halt(haltCtx)
	netw.Disconnect()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
