package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"storefront/pkg/config"
	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
	"storefront/pkg/infrastructure/event"
	"storefront/pkg/infrastructure/health"
	"storefront/pkg/infrastructure/restapi"
	"storefront/pkg/infrastructure/storage"
	"storefront/pkg/infrastructure/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  "storefront",
		Usage: "headwear storefront state service",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the storefront API and the gRPC health service",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "http-addr", Usage: "HTTP listen address (overrides STOREFRONT_HTTP_ADDR)"},
					&cli.StringFlag{Name: "grpc-addr", Usage: "gRPC health listen address (overrides STOREFRONT_GRPC_ADDR)"},
					&cli.StringFlag{Name: "backend-url", Usage: "REST data source base URL (overrides STOREFRONT_BACKEND_URL)"},
					&cli.BoolFlag{Name: "demo-orders", Usage: "show labeled demo orders when users have none"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply the MySQL storage schema",
				Action: migrateSchema,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("storefront stopped")
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("http-addr") {
		cfg.HTTPAddr = c.String("http-addr")
	}
	if c.IsSet("grpc-addr") {
		cfg.GRPCAddr = c.String("grpc-addr")
	}
	if c.IsSet("backend-url") {
		cfg.BackendURL = c.String("backend-url")
	}
	if c.IsSet("demo-orders") {
		cfg.DemoOrders = c.Bool("demo-orders")
	}

	log.SetLevel(cfg.Level())
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		log.SetOutput(file)
	}
	return cfg, nil
}

func openStorage(cfg *config.Config) (model.Storage, io.Closer, error) {
	switch cfg.StorageDriver {
	case config.StorageFile:
		s, err := storage.OpenFile(cfg.StoragePath)
		return s, io.NopCloser(nil), err
	case config.StorageMySQL:
		s, err := storage.OpenMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return storage.NewMemory(), io.NopCloser(nil), nil
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, closer, err := openStorage(cfg)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer closer.Close()

	logger := log.StandardLogger()
	client := restapi.NewClient(restapi.Config{
		BaseURL:       cfg.BackendURL,
		Timeout:       cfg.RequestTimeout,
		ReadAttempts:  cfg.ReadAttempts,
		RetryInterval: cfg.RetryInterval,
	}, logger)
	dispatcher := event.NewLogDispatcher(logger)

	router := transport.Router(transport.Dependencies{
		Catalog:  service.NewCatalogService(client, logger),
		Products: service.NewProductDetailService(client),
		Admin:    service.NewAdminService(client, dispatcher, logger, service.AdminOptions{DemoOrders: cfg.DemoOrders}),
		Storage:  store,
		Pricing:  cfg.Pricing(),
		Events:   dispatcher.Session,
	})

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	healthServer := health.NewServer(client, cfg.HealthInterval, cfg.RequestTimeout, logger)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return errors.Wrap(err, "listen for gRPC")
	}
	go healthServer.Watch(ctx)
	go func() {
		if err := healthServer.Serve(lis); err != nil {
			log.WithError(err).Error("gRPC health server stopped")
		}
	}()

	killSignalChan := getKillSignalChan()
	log.WithFields(log.Fields{"http": cfg.HTTPAddr, "grpc": cfg.GRPCAddr, "storage": cfg.StorageDriver}).Info("Starting server")
	srv := startServer(cfg.HTTPAddr, router)

	waitForKillSignalChan(killSignalChan)

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	healthServer.Stop()
	return srv.Shutdown(shutdownCtx)
}

func migrateSchema(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.StorageMySQL {
		return errors.Errorf("nothing to migrate for the %s storage driver", cfg.StorageDriver)
	}

	s, err := storage.OpenMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer s.Close()

	if err = storage.Migrate(s.DB().DB); err != nil {
		return err
	}
	log.Info("storage schema is up to date")
	return nil
}

func startServer(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	return srv
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignalChan(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("Got SIGINT...")
	case syscall.SIGTERM:
		log.Info("Got SIGTERM...")
	}
}
