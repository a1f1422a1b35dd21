package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/shop-service/internal/api/http"
	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/messaging"
	"github.com/spec-kit/shop-service/internal/observability"
	"github.com/spec-kit/shop-service/internal/persistence"
	"github.com/spec-kit/shop-service/internal/repository"
	"github.com/spec-kit/shop-service/internal/service"
	"github.com/spec-kit/shop-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	attemptRepo := repository.NewLoginAttemptRepository(redis.Client)

	var publisher service.EventPublisher
	if kafka := messaging.NewKafkaPublisher(cfg.Kafka); kafka != nil {
		publisher = kafka
		defer func() {
			if err := kafka.Close(); err != nil {
				logger.Warn("close kafka publisher", zap.Error(err))
			}
		}()
		logger.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	eventQueue := worker.NewNotificationWorker(events.NewInMemoryDispatcher(), 1024, logger)
	notificationService := service.NewNotificationService(eventQueue, publisher, logger)
	worker.StartNotificationWorker(eventQueue, notificationService)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    userRepo,
		AttemptRepo: attemptRepo,
		Tokens:      tokens,
		Hasher:      hasher,
		Logger:      logger,
	})
	userService := service.NewUserService(userRepo, hasher, eventQueue)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo:  productRepo,
		CategoryRepo: categoryRepo,
		Dispatcher:   eventQueue,
	})
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, eventQueue)
	searchService := service.NewSearchService(userRepo, categoryRepo, productRepo)

	authenticator := auth.NewAuthenticator(tokens, auth.NewIdentityResolver(userRepo))
	metrics := observability.NewMetrics("shop")

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		Immutable:             true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:          handlers.NewAuthHandler(authService),
		Users:         handlers.NewUsersHandler(userService, cfg.Pagination),
		Categories:    handlers.NewCategoriesHandler(categoryService, cfg.Pagination),
		Products:      handlers.NewProductsHandler(productService, cfg.Pagination),
		Carts:         handlers.NewCartsHandler(cartService, cfg.Pagination),
		Orders:        handlers.NewOrdersHandler(orderService, cfg.Pagination),
		Search:        handlers.NewSearchHandler(searchService),
		Authenticator: authenticator,
		Owners: httptransport.OwnerLookups{
			Users:    userRepo,
			Products: productRepo,
			Carts:    cartRepo,
			Orders:   orderRepo,
		},
		Gatherer: metrics.Registry(),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if err := eventQueue.Stop(drainCtx); err != nil {
		logger.Warn("event queue did not drain", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
