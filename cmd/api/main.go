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

	httptransport "github.com/storefront-ir/storefront-service/internal/api/http"
	"github.com/storefront-ir/storefront-service/internal/api/http/handlers"
	"github.com/storefront-ir/storefront-service/internal/auth"
	"github.com/storefront-ir/storefront-service/internal/config"
	"github.com/storefront-ir/storefront-service/internal/events"
	"github.com/storefront-ir/storefront-service/internal/observability"
	"github.com/storefront-ir/storefront-service/internal/persistence"
	"github.com/storefront-ir/storefront-service/internal/repository"
	"github.com/storefront-ir/storefront-service/internal/repository/memory"
	"github.com/storefront-ir/storefront-service/internal/service"
	"github.com/storefront-ir/storefront-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users         repository.UserRepository
	products      repository.ProductRepository
	orders        repository.OrderRepository
	tickets       repository.TicketRepository
	updates       repository.TicketUpdateRepository
	notifications repository.NotificationRepository
}

// buildRepositories picks Postgres and Redis when configured and falls back to memory otherwise.
func buildRepositories(cfg *config.Config, pg *persistence.Postgres, rdb *persistence.Redis) repositories {
	store := memory.New(memory.WithMaxNotifications(cfg.Notification.MaxPerUser))
	repos := repositories{
		users:         store.Users(),
		products:      store.Products(),
		orders:        store.Orders(),
		tickets:       store.Tickets(),
		updates:       store.TicketUpdates(),
		notifications: store.Notifications(),
	}
	if pg.Enabled() {
		pool := pg.PoolHandle()
		repos.users = repository.NewUserRepository(pool)
		repos.products = repository.NewProductRepository(pool)
		repos.orders = repository.NewOrderRepository(pool)
		repos.tickets = repository.NewTicketRepository(pool)
		repos.updates = repository.NewTicketUpdateRepository(pool)
	}
	if rdb.Enabled() {
		repos.notifications = repository.NewNotificationRepository(rdb.Client, cfg.Notification.MaxPerUser)
	}
	return repos
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	repos := buildRepositories(cfg, pg, rdb)
	location := cfg.App.Location()
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: repos.users, Logger: logger})
	if _, err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		logger.Fatal("failed to bootstrap administrator", zap.Error(err))
	}
	productService := service.NewProductService(repos.products)
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   repos.orders,
		ProductRepo: repos.products,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Location:    location,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repos.tickets,
		UpdateRepo: repos.updates,
		OrderRepo:  repos.orders,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Store:  repos.notifications,
		Logger: logger,
	})
	analyticsService := service.NewAnalyticsService(repos.orders, repos.tickets)

	notificationWorker := worker.StartNotificationWorker(dispatcher, notificationService, logger, 0)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Products:       handlers.NewProductsHandler(productService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.users),
	})

	go func() {
		logger.Info("http server starting",
			zap.String("addr", cfg.App.Addr()),
			zap.Bool("postgres", pg.Enabled()),
			zap.Bool("redis", rdb.Enabled()),
			zap.String("timezone", location.String()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notificationWorker.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
