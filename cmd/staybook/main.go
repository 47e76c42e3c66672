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

	"github.com/joho/godotenv"

	"staybook/internal/app/commands"
	advertapp "staybook/internal/app/handlers/adverts"
	reservationapp "staybook/internal/app/handlers/reservations"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	kafkabroker "staybook/internal/infra/broker/kafka"
	redisstore "staybook/internal/infra/cache/redis"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/mailer"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks: app.readiness,
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

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	app.close(logger)
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	outboxWorker *infraoutbox.Worker
	readiness    []obs.NamedCheck
	producer     *kafkabroker.Producer
	mongoClient  *mongodb.Client
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory  uow.Factory
		outboxStore outbox.Outbox
		usersRepo   domainuser.Repository
		app         application
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		app.mongoClient = client
		usersRepo = mongodb.NewUserRepository(client.DB)
		uowFactory = &mongodb.Factory{
			DB:               client.DB,
			UsersRepo:        usersRepo,
			AdvertsRepo:      mongodb.NewAdvertRepository(client.DB),
			ReservationsRepo: mongodb.NewReservationRepository(client.DB),
		}
		store := infraoutbox.NewStore(client.DB)
		outboxStore = store
		app.readiness = append(app.readiness, obs.NamedCheck{Name: "mongo", Check: client.Ping})

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafkabroker.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, err
			}
			app.producer = producer
			app.outboxWorker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
				Logger:      logger,
			}
		} else {
			logger.Warn("kafka brokers not configured, outbox records will accumulate")
		}
	} else {
		logger.Warn("mongo not configured, using in-memory storage")
		factory := memory.NewFactory()
		usersRepo = factory.UsersRepo
		uowFactory = factory
		outboxStore = memory.NewOutbox()
	}

	var sessions domainauth.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		sessions = redisstore.NewSessionStore(redisClient)
		app.readiness = append(app.readiness, obs.NamedCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	} else {
		logger.Warn("redis not configured, sessions held in memory")
		sessions = memory.NewSessionStore()
	}

	var pictures advertapp.PictureStore
	if cfg.S3Endpoint != "" {
		uploader, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, logger)
		if err != nil {
			return application{}, err
		}
		pictures = uploader
	}

	var notifier reservationapp.OwnerNotifier = mailer.NoopNotifier{}
	if cfg.SMTPHost != "" {
		notifier = mailer.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword, cfg.SMTPFrom, logger)
	}

	authService := &authsvc.Service{
		Users:      usersRepo,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, advertapp.CreateAdvertCommand{}.Key(), &advertapp.CreateAdvertHandler{
		Pictures: pictures,
		Outbox:   outboxStore,
		Logger:   logger,
	})
	commands.RegisterHandler(commandBus, advertapp.EditAdvertCommand{}.Key(), &advertapp.EditAdvertHandler{
		Pictures: pictures,
		Outbox:   outboxStore,
		Logger:   logger,
	})
	commands.RegisterHandler(commandBus, advertapp.DeleteAdvertCommand{}.Key(), &advertapp.DeleteAdvertHandler{
		Outbox: outboxStore,
		Logger: logger,
	})
	commands.RegisterHandler(commandBus, reservationapp.ReserveCommand{}.Key(), &reservationapp.ReserveHandler{
		Outbox:   outboxStore,
		Notifier: notifier,
		Logger:   logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, advertapp.SearchCatalogQuery{}.Key(), &advertapp.SearchCatalogHandler{
		UoWFactory: uowFactory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Transaction(uowFactory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.handlers = ginserver.Handlers{
		Auth: ginserver.AuthHandler{Service: authService, Logger: logger},
		Adverts: ginserver.AdvertHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Reservations: ginserver.ReservationHandler{
			Commands: commandBusWithMiddleware,
			Logger:   logger,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	return app, nil
}

func (a application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	if a.mongoClient != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongoClient.Close(closeCtx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
}
