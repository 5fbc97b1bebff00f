package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/memstore"
	mongoadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/mongodb"
	natsadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/nats"
	redisadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/redis"
	s3adapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	natsgo "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// App wires the storage backend, the optional collaborators and the
// services together. The backend is chosen once here; everything above the
// repository.Store interface is backend-agnostic.
type App struct {
	cfg *config.Config
	log logger.Logger

	Store         repository.Store
	Orders        service.OrderService
	Catalog       service.CatalogService
	Carts         service.CartService
	Jobs          service.JobService
	Reviews       service.ReviewService
	Users         service.UserService
	Notifications service.NotificationService
	Activity      service.ActivityService

	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *natsgo.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logCfg := logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	}
	appLogger, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, storage backend: %s", cfg.Env, cfg.Storage.Backend)

	application := &App{
		cfg: cfg,
		log: appLogger,
	}

	switch cfg.Storage.Backend {
	case "mongo":
		appLogger.Info("Initializing MongoDB client...")
		mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
		}
		application.mongoClient = mongoClient
		application.Store = mongoadapter.NewStore(mongoClient, cfg.MongoDB)
		appLogger.Info("MongoDB store initialized")
	case "memory":
		application.Store = memstore.NewStore()
		appLogger.Info("In-memory store initialized")
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want mongo or memory)", cfg.Storage.Backend)
	}

	var productCache repository.ProductDetailCache
	if cfg.Redis.Enabled {
		appLogger.Info("Initializing Redis client...")
		redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		application.redisClient = redisClient
		productCache = redisadapter.NewProductDetailCacheRepository(redisClient)
		appLogger.Info("Product detail cache initialized")
	}

	var msgPublisher natsadapter.MessagePublisher
	if cfg.NATS.Enabled {
		appLogger.Info("Connecting to NATS...")
		natsConn, err := natsadapter.NewConnection(cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		application.natsConn = natsConn
		msgPublisher, err = natsadapter.NewNATSPublisher(natsConn)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
		}
		appLogger.Info("NATS publisher initialized")
	}

	var blobStorage service.BlobStorage
	if cfg.S3.Enabled {
		s3Storage, err := s3adapter.NewStorage(ctx, cfg.S3, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		blobStorage = s3Storage
	}

	var emailSender emailadapter.EmailSender
	if cfg.SMTP.Enabled {
		emailSender, err = emailadapter.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
		appLogger.Info("SMTP sender initialized")
	}

	clock := service.SystemClock()
	newID := service.IDGenerator(service.NewUUID)
	store := application.Store

	application.Activity = service.NewActivityService(store, cfg.Activity.MaxEntries, clock, newID, appLogger)
	application.Notifications = service.NewNotificationService(store, emailSender, clock, newID, appLogger)
	application.Orders = service.NewOrderService(store, productCache, msgPublisher, application.Activity, clock, newID, appLogger)
	application.Catalog = service.NewCatalogService(store, productCache, blobStorage, application.Activity, service.CatalogServiceConfig{
		FallbackCategoryName: cfg.Catalog.FallbackCategoryName,
		ProductCacheTTL:      cfg.Redis.ProductCacheTTL,
	}, clock, newID, appLogger)
	application.Carts = service.NewCartService(store, clock, appLogger)
	application.Jobs = service.NewJobService(store, blobStorage, msgPublisher, application.Notifications, application.Activity, clock, newID, appLogger)
	application.Reviews = service.NewReviewService(store, productCache, application.Activity, clock, newID, appLogger)
	application.Users = service.NewUserService(store, clock, newID, appLogger)

	return application, nil
}

// Run starts the background job-expiry sweeper and blocks until a shutdown
// signal arrives.
func (a *App) Run() {
	a.log.Info("Starting application components...")

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go a.runExpirySweeper(sweepCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		}
	}
	if a.natsConn != nil {
		a.natsConn.Close()
	}

	a.log.Info("Application shut down successfully")
}

// runExpirySweeper periodically expires overdue open jobs. Lazy expiry on
// the read path keeps reads correct between sweeps.
func (a *App) runExpirySweeper(ctx context.Context) {
	interval := a.cfg.Jobs.ExpirySweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("Job expiry sweeper stopped")
			return
		case <-ticker.C:
			expired, err := a.Jobs.ExpireDueJobs(ctx)
			if err != nil {
				a.log.Warnf("Job expiry sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				a.log.Infof("Job expiry sweep: %d jobs expired", expired)
			}
		}
	}
}
