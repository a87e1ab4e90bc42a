package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/commands"
	adminapp "staybook/internal/app/handlers/admin"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	listingapp "staybook/internal/app/handlers/listings"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	outboxWorker *infraoutbox.Worker
	ready        func() error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory   uow.UoWFactory
		users        domainuser.Repository
		sessions     domainauth.SessionStore
		outboxStore  appoutbox.Outbox
		idStore      middleware.IdempotencyStore
		outboxWorker *infraoutbox.Worker
		ready        = func() error { return nil }
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		uowFactory = mongodb.Factory{
			DB:               client.DB,
			ListingsRepo:     mongodb.NewListingRepository(client.DB),
			BookingRepo:      mongodb.NewBookingRepository(client.DB),
			AvailabilityRepo: mongodb.NewAvailabilityRepository(client.DB),
		}
		users = mongodb.NewUserRepository(client.DB)
		sessions = mongodb.NewSessionStore(client.DB)
		store := infraoutbox.NewStore(client.DB)
		outboxStore = store
		idStore = mongodb.NewIdempotencyStore(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, err
			}
			outboxWorker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("kafka brokers not configured, domain events stay in the outbox")
		}
	default:
		uowFactory = memory.Factory{
			ListingsRepo:     memory.NewListingRepository(),
			BookingRepo:      memory.NewBookingRepository(),
			AvailabilityRepo: memory.NewAvailabilityRepository(),
		}
		users = memory.NewUserRepository()
		sessions = memory.NewSessionStore()
		outboxStore = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
	}

	var uploader s3.Uploader = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("s3 uploader unavailable", "error", err)
		} else {
			uploader = client
		}
	}

	authService := &authsvc.Service{
		Users:      users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.UploadListingPhotoCommand{}.Key(), &listingapp.UploadListingPhotoHandler{
		Logger: logger, Uploader: uploader, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.ApproveBookingCommand{}.Key(), &bookingapp.ApproveBookingHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.DeclineBookingCommand{}.Key(), &bookingapp.DeclineBookingHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, availabilityapp.SetAvailabilityCommand{}.Key(), &availabilityapp.SetAvailabilityHandler{
		Logger: logger, Outbox: outboxStore, Encoder: encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.ListHostListingsQuery{}.Key(), &listingapp.ListHostListingsHandler{UoWFactory: uowFactory, Logger: logger})
	queries.RegisterHandler(queryBus, listingapp.SearchListingsQuery{}.Key(), &listingapp.SearchListingsHandler{UoWFactory: uowFactory, Logger: logger})
	queries.RegisterHandler(queryBus, listingapp.ListingDetailsQuery{}.Key(), &listingapp.ListingDetailsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: uowFactory, Logger: logger})
	queries.RegisterHandler(queryBus, bookingapp.ListHostBookingsQuery{}.Key(), &bookingapp.ListHostBookingsHandler{UoWFactory: uowFactory, Logger: logger})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, adminapp.ListUsersQuery{}.Key(), &adminapp.ListUsersHandler{Users: users, Logger: logger})
	queries.RegisterHandler(queryBus, adminapp.ListAllListingsQuery{}.Key(), &adminapp.ListAllListingsHandler{UoWFactory: uowFactory, Users: users, Logger: logger})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryValidation())

	handlers := ginserver.Handlers{
		Auth:         ginserver.AuthHandler{Service: authService, Logger: logger},
		HostListing:  ginserver.HostListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		HostBooking:  ginserver.HostBookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		Availability: ginserver.AvailabilityHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		Listing:      ginserver.ListingHandler{Queries: queryBusWithMiddleware, Logger: logger},
		Booking:      ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		Admin:        ginserver.AdminHandler{Queries: queryBusWithMiddleware, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{
			Service: authService,
			Logger:  logger,
		}.Handle,
	}

	return application{handlers: handlers, outboxWorker: outboxWorker, ready: ready}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
