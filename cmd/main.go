package main

import (
	"context"
	"database/sql"
	"errors"
	"os/signal"
	"syscall"
	"time"

	_ "reflow_predictor/docs"
	"reflow_predictor/internal/backend"
	"reflow_predictor/internal/handlers"
	"reflow_predictor/internal/logger"
	"reflow_predictor/internal/predictor"
	"reflow_predictor/internal/ranges"
	"reflow_predictor/internal/repository"
	"reflow_predictor/internal/repository/db"
	"reflow_predictor/internal/server"
	"reflow_predictor/internal/service"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title        Reflow Predictor API
// @version      1.0
// @description  Board and process parameter wizard for reflow profile predictions.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfgErr := loadConfig()

	// init logger
	log := logger.Get(viper.GetString("log.level"))
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	// open DB
	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// every offered paste type needs a range entry
	table, err := ranges.Default()
	if err != nil {
		log.Fatalw("invalid range table", "err", err)
	}

	predictorURL := viper.GetString("predictor.url")
	probeAddr, err := service.ProbeAddress(predictorURL)
	if err != nil {
		log.Fatalw("invalid predictor url", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		Predictor: predictor.NewClient(predictorURL, predictor.WithTimeout(viper.GetDuration("predictor.timeout"))),
		Ranges:    table,
		Log:       log,
		Auth: service.AuthConfig{
			SigningKey: viper.GetString("auth.signing_key"),
			TokenTTL:   viper.GetDuration("auth.token_ttl"),
		},
		ProbeAddr: probeAddr,
		Spreadsheet: service.SpreadsheetConfig{
			Path:    viper.GetString("spreadsheet.path"),
			Command: viper.GetString("spreadsheet.command"),
			Args:    viper.GetStringSlice("spreadsheet.args"),
		},
	})
	apiHandler := handlers.NewHandler(services, log)

	supervisor := backend.NewSupervisor(backend.Config{
		Command: viper.GetString("backend.command"),
		Args:    viper.GetStringSlice("backend.args"),
		Dir:     viper.GetString("backend.dir"),
		Grace:   viper.GetDuration("backend.stop_grace"),
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// predictor backend process
	g.Go(func() error { return supervisor.Run(gctx) })

	// reachability probe
	g.Go(func() error {
		services.Prober.Run(gctx, viper.GetDuration("predictor.probe_interval"))
		return nil
	})

	// HTTP server
	srv := &server.Server{}
	addr := server.Addr(viper.GetString("host"), viper.GetString("port"))
	g.Go(func() error {
		log.Infow("http_server_listening", "addr", addr, "predictor", predictorURL)
		return srv.Run(addr, apiHandler.InitRoutes())
	})

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")
		services.Shutdown()

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Errorw("server stopped with error", "err", err)
	}
}

func loadConfig() error {
	viper.SetDefault("host", "127.0.0.1")
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", db.MemoryPath)
	viper.SetDefault("auth.token_ttl", time.Hour)
	viper.SetDefault("predictor.url", "http://127.0.0.1:5000")
	viper.SetDefault("predictor.timeout", predictor.DefaultTimeout)
	viper.SetDefault("predictor.probe_interval", service.DefaultProbeInterval)
	viper.SetDefault("backend.stop_grace", backend.DefaultStopGrace)

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" || dbPath == db.MemoryPath {
		log.Infow("db.path not set in config; journal kept in memory")
	}
	return db.InitDB(dbPath)
}
