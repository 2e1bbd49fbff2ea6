package cmd

import (
	"context"
	"fmt"
	"time"

	"mir4tracker/application"
	"mir4tracker/config"
	"mir4tracker/database"
	"mir4tracker/events"
	"mir4tracker/infrastructure"
	"mir4tracker/repository"
	"mir4tracker/repository/memstore"
	"mir4tracker/repository/mongostore"
	"mir4tracker/server"
	"mir4tracker/service"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// stores bundles the repositories of the selected backend
type stores struct {
	accounts service.AccountRepository
	prices   service.PriceRepository
	close    func()
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"store":       cfg.StoreBackend,
	}).Info("Starting MIR4 account tracker...")

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// Initialize event bus
	eventBus := events.NewBus()
	application.RegisterEventLogger(eventBus)

	var eventPublisher service.EventPublisher = eventBus
	if cfg.NATSServers != "" {
		natsClient, err := connectNATS(ctx, cfg.NATSServers)
		if err != nil {
			return err
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		}()
		eventPublisher = infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper(), eventBus)
	}

	// Initialize services
	priceService := service.NewPriceService(st.prices, eventPublisher)
	sweepService := service.NewSweepService(st.accounts, eventPublisher)
	accountService := service.NewAccountService(st.accounts, priceService, sweepService, eventPublisher, cfg.AccountListLimit)
	statsService := service.NewStatsService(accountService)
	log.Info("Services initialized successfully")

	sweepWorker := application.NewExpirySweepWorker(sweepService, service.SweepInterval)
	stopSweeps := sweepWorker.Start(ctx)
	defer stopSweeps()

	app := server.New(accountService, priceService, statsService, sweepWorker).
		App(server.Options{CORSOrigins: cfg.CORSOrigins})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := app.Listen(addr); err != nil {
			return fmt.Errorf("HTTP server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server...")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	log.Info("Shutdown completed")
	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMongo:
		log.WithField("db", cfg.MongoDBName).Info("Connecting to MongoDB...")
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		store, err := mongostore.Connect(connectCtx, cfg.MongoURL, cfg.MongoDBName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		return &stores{
			accounts: store.Accounts(),
			prices:   store.Prices(),
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := store.Close(closeCtx); err != nil {
					log.WithError(err).Error("Error closing MongoDB connection")
				}
			},
		}, nil

	case config.StoreBackendMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		store := memstore.New()
		return &stores{accounts: store.Accounts(), prices: store.Prices(), close: func() {}}, nil

	default:
		databaseURL := cfg.GetDatabaseURL()
		log.Info("Running database migrations...")
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			return nil, err
		}

		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")

		return &stores{
			accounts: repository.NewAccountRepository(db),
			prices:   repository.NewPriceRepository(db),
			close: func() {
				log.Info("Closing database connection...")
				db.Close()
			},
		}, nil
	}
}

func connectNATS(ctx context.Context, servers string) (*infrastructure.NATSClient, error) {
	client := infrastructure.NewNATSClient(servers)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.TrackerEventStream, mapper.GetAllSubjects()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	log.WithField("servers", servers).Info("Forwarding tracker events to NATS")
	return client, nil
}
