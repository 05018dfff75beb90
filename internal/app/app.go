package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/router"
	natsadapter "github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/messaging/nats"
	redisadapter "github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/repository/memory"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/repository/mongodb"
	memstorage "github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/storage/memory"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/usecase"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/identity"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/tracer"
	grpcserver "github.com/Abdurahmanit/GroupProject/estate-service/internal/port/grpc"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	cfg            *config.Config
	log            *logger.Logger
	httpServer     *http.Server
	grpcServer     *grpcserver.Server
	metricsServer  *metrics.Server
	effects        *usecase.Effects
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	publisher      *natsadapter.Publisher
	tracerProvider *sdktrace.TracerProvider
}

// stores is what the ledger driver switch produces.
type stores struct {
	ledger    domain.Ledger
	enquiries domain.EnquiryRepository
	accounts  identity.Stores
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger := logger.New(cfg.Logger)
	appLogger.Info("Logger initialized")
	appLogger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("ledger_driver", cfg.Ledger.Driver),
		zap.String("http_port", cfg.HTTPServer.Port),
		zap.String("grpc_port", cfg.GRPCServer.Port),
	)

	a := &App{cfg: cfg, log: appLogger}
	a.tracerProvider = tracer.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.OTLPEndpoint, appLogger)
	metricsManager := metrics.NewMetricsManager(cfg.Metrics.Namespace)

	if cfg.Redis.Enabled {
		appLogger.Info("Initializing Redis client...")
		client, err := redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		a.redisClient = client
		appLogger.Info("Redis client initialized successfully", zap.String("addr", cfg.Redis.Addr))
	}

	st, err := a.initStores(ctx, metricsManager)
	if err != nil {
		return nil, err
	}

	tokens := identity.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TokenTTL, cfg.JWT.Issuer)
	identitySvc := identity.NewService(st.accounts, tokens, appLogger)
	if cfg.Admin.Email != "" {
		err := identitySvc.EnsureAdmin(ctx, identity.RegisterInput{Name: cfg.Admin.Name, Email: cfg.Admin.Email, Password: cfg.Admin.Password})
		if err != nil {
			return nil, fmt.Errorf("failed to seed administrator: %w", err)
		}
		appLogger.Info("Administrator account ensured", zap.String("email", cfg.Admin.Email))
	}

	var propertyCache domain.PropertyCache
	if a.redisClient != nil {
		propertyCache = cache.NewPropertyCache(a.redisClient, cfg.Cache.PropertyTTL)
		appLogger.Info("Property cache enabled", zap.Duration("ttl", cfg.Cache.PropertyTTL))
	}

	var events domain.EventPublisher
	if cfg.NATS.Enabled {
		conn, err := natsadapter.NewConnection(cfg.NATS, appLogger)
		if err != nil {
			return nil, err
		}
		publisher, err := natsadapter.NewPublisher(conn)
		if err != nil {
			return nil, err
		}
		a.publisher = publisher
		events = publisher
		appLogger.Info("NATS publisher initialized", zap.String("url", cfg.NATS.URL))
	}

	var storage domain.Storage
	var mediaHandler *handler.MediaHandler
	if cfg.Minio.Enabled {
		s3Storage, err := s3.NewS3Storage(ctx, cfg.Minio, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		storage = s3Storage
	} else {
		local := memstorage.NewStorage(cfg.HTTPServer.MediaBaseURL)
		storage = local
		mediaHandler = handler.NewMediaHandler(local, appLogger)
		appLogger.Warn("Object storage disabled, images are kept in memory")
	}

	var notifier domain.SellerNotifier
	if cfg.SMTP.Enabled {
		sender, err := email.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
		notifier = email.NewSellerNotifier(sender, identitySvc)
		appLogger.Info("Seller notifications enabled", zap.String("smtp_host", cfg.SMTP.Host))
	}

	a.effects = usecase.NewEffects(propertyCache, events, notifier, metricsManager, appLogger)
	listingUC := usecase.NewListingUsecase(st.ledger, storage, a.effects, appLogger)
	reservationUC := usecase.NewReservationUsecase(st.ledger, a.effects, appLogger)
	settlementUC := usecase.NewSettlementUsecase(st.ledger, a.effects, appLogger)
	queryUC := usecase.NewQueryUsecase(st.ledger, propertyCache, identitySvc, appLogger)
	enquiryUC := usecase.NewEnquiryUsecase(st.ledger, st.enquiries, identitySvc, a.effects, appLogger)
	appLogger.Info("Usecases initialized")

	mux := router.New(router.Handlers{
		Auth:      handler.NewAuthHandler(identitySvc, appLogger),
		Property:  handler.NewPropertyHandler(listingUC, queryUC, cfg.HTTPServer.MaxUploadBytes, appLogger),
		Booking:   handler.NewBookingHandler(reservationUC, settlementUC, queryUC, appLogger),
		Enquiry:   handler.NewEnquiryHandler(enquiryUC, appLogger),
		Dashboard: handler.NewDashboardHandler(queryUC, appLogger),
		Media:     mediaHandler,
	}, identitySvc, appLogger)

	a.httpServer = &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}
	a.grpcServer = grpcserver.NewServer(appLogger, cfg.GRPCServer.Port, cfg.GRPCServer.MaxConnectionIdle)
	a.metricsServer = metrics.NewServer(cfg.Metrics.Port, metricsManager.Registry, appLogger)
	appLogger.Info("Servers created")

	return a, nil
}

func (a *App) initStores(ctx context.Context, m *metrics.MetricsManager) (*stores, error) {
	cfg := a.cfg
	if cfg.Ledger.Driver == config.LedgerDriverMemory {
		a.log.Warn("Using in-memory ledger, state is lost on restart")
		return &stores{
			ledger:    memory.NewLedger(cfg.Ledger.TxTimeout, a.log),
			enquiries: memory.NewEnquiryRepository(),
			accounts: identity.Stores{
				Sellers: memory.NewCredentialStore(domain.RoleSeller),
				Agents:  memory.NewCredentialStore(domain.RoleAgent),
				Admins:  memory.NewCredentialStore(domain.RoleAdmin),
			},
		}, nil
	}

	a.log.Info("Initializing MongoDB client...")
	client, err := mongodb.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	a.mongoClient = client
	db := client.Database(cfg.MongoDB.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to ensure MongoDB indexes: %w", err)
	}
	a.log.Info("MongoDB client initialized successfully", zap.String("database", cfg.MongoDB.Database))

	var locker mongodb.Locker
	if cfg.Lock.Enabled {
		locker = redisadapter.NewLockManager(a.redisClient, cfg.Lock, func(wait time.Duration) {
			m.LockWaitSeconds.Observe(wait.Seconds())
		}, a.log)
		a.log.Info("Distributed property lock enabled", zap.Duration("expiry", cfg.Lock.Expiry))
	}

	accounts := identity.Stores{}
	for role, dst := range map[domain.Role]*identity.CredentialStore{
		domain.RoleSeller: &accounts.Sellers,
		domain.RoleAgent:  &accounts.Agents,
		domain.RoleAdmin:  &accounts.Admins,
	} {
		store, err := mongodb.NewCredentialStore(db, role)
		if err != nil {
			return nil, err
		}
		*dst = store
	}

	return &stores{
		ledger:    mongodb.NewLedger(client, cfg.MongoDB.Database, locker, cfg.Ledger.TxTimeout, a.log),
		enquiries: mongodb.NewEnquiryRepository(db, a.log),
		accounts:  accounts,
	}, nil
}

// Run serves until SIGINT/SIGTERM or a server failure, then shuts down.
func (a *App) Run() error {
	a.log.Info("Starting application components...")
	errCh := make(chan error, 3)

	go func() {
		if err := a.metricsServer.Start(); err != nil {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()
	go func() {
		if err := a.grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		a.log.Info("HTTP server is starting", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	a.grpcServer.SetServing(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		a.log.Info("Received shutdown signal, shutting down application...", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		a.log.Error("Server failed, shutting down application...", zap.Error(runErr))
	}

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	a.grpcServer.SetServing(false)

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Error during HTTP server graceful shutdown", zap.Error(err))
	}
	grpcCtx, cancelGRPC := context.WithTimeout(context.Background(), a.cfg.GRPCServer.TimeoutGraceful)
	defer cancelGRPC()
	if err := a.grpcServer.Stop(grpcCtx); err != nil {
		a.log.Error("Error during gRPC server graceful shutdown", zap.Error(err))
	}
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		a.log.Error("Error during metrics server shutdown", zap.Error(err))
	}

	a.log.Info("Waiting for pending notifications...")
	a.effects.Wait()

	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}

	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}
