package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/Noore22/Cake-Craft/internal/catalog"
	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/handlers"
	"github.com/Noore22/Cake-Craft/internal/platform/config"
	pfirestore "github.com/Noore22/Cake-Craft/internal/platform/firestore"
	"github.com/Noore22/Cake-Craft/internal/platform/format"
	"github.com/Noore22/Cake-Craft/internal/platform/idempotency"
	"github.com/Noore22/Cake-Craft/internal/platform/jobs"
	"github.com/Noore22/Cake-Craft/internal/platform/observability"
	"github.com/Noore22/Cake-Craft/internal/repositories"
	firestoreRepo "github.com/Noore22/Cake-Craft/internal/repositories/firestore"
	"github.com/Noore22/Cake-Craft/internal/repositories/memory"
	"github.com/Noore22/Cake-Craft/internal/services"
)

const (
	pubsubEmulatorEnv      = "PUBSUB_EMULATOR_HOST"
	customizerPruneEvery   = 10 * time.Minute
	dependencyCheckTimeout = 1500 * time.Millisecond
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	buildInfo := buildInfoFromEnv(cfg, startedAt)

	cat, err := loadCatalog(ctx, logger.Named("catalog"), cfg.Catalog)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	var checks []repositories.DependencyCheck
	var stateStore repositories.StateStore
	var idempotencyStore idempotency.Store = idempotency.NewMemoryStore()

	switch cfg.State.Backend {
	case config.StateBackendFirestore:
		firestoreProvider := pfirestore.NewProvider(cfg.Firestore,
			pfirestore.WithDialTimeout(10*time.Second),
			pfirestore.WithClientOptions(option.WithUserAgent("cakecraft-api/"+buildInfo.Version)),
		)
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := firestoreProvider.Close(closeCtx); err != nil {
				logger.Warn("firestore close error", zap.Error(err))
			}
		}()
		store, err := firestoreRepo.NewStateStore(firestoreProvider, cfg.Firestore.StateCollection)
		if err != nil {
			logger.Fatal("failed to initialise firestore state store", zap.Error(err))
		}
		stateStore = store
		idempotencyStore = idempotency.NewFirestoreStore(firestoreProvider)
		checks = append(checks, dependencyCheck("firestore", store, true))
	default:
		store := memory.NewStateStore(nil)
		stateStore = store
		checks = append(checks, dependencyCheck("state", store, true))
	}

	cartRepo, err := repositories.NewCartRepository(stateStore)
	if err != nil {
		logger.Fatal("failed to initialise cart repository", zap.Error(err))
	}
	orderRepo, err := repositories.NewOrderRepository(stateStore)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	unitOfWork := repositories.NewLockingUnitOfWork()

	publisher, stopPublisher, err := newOrderPublisher(ctx, logger.Named("events"), cfg.PubSub)
	if err != nil {
		logger.Fatal("failed to initialise order event publisher", zap.Error(err))
	}
	defer stopPublisher()
	if p, ok := publisher.(pinger); ok {
		checks = append(checks, dependencyCheck("pubsub", p, false))
	}

	promotions, err := services.NewPromotionService(cfg.Promotions.Coupons)
	if err != nil {
		logger.Fatal("failed to initialise promotions", zap.Error(err))
	}
	rules := services.PricingRules{
		MessageFee:            cfg.Pricing.MessageFee,
		DeliveryFee:           cfg.Pricing.DeliveryFee,
		FreeDeliveryThreshold: cfg.Pricing.FreeDeliveryThreshold,
		Currency:              cfg.Pricing.Currency,
	}
	pricing, err := services.NewPricingEngine(services.PricingEngineDeps{Rules: rules, Promotions: promotions})
	if err != nil {
		logger.Fatal("failed to initialise pricing engine", zap.Error(err))
	}
	configurator, err := services.NewConfigurator(cat, rules)
	if err != nil {
		logger.Fatal("failed to initialise configurator", zap.Error(err))
	}
	money, err := format.NewMoneyFormatter(cfg.Pricing.Locale, cfg.Pricing.Currency)
	if err != nil {
		logger.Fatal("failed to initialise money formatter", zap.Error(err))
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Cart:       cartRepo,
		Pricing:    pricing,
		UnitOfWork: unitOfWork,
		Logger:     observability.EventLogger(logger.Named("cart"), "cart event"),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}
	customizerService, err := services.NewCustomizerService(services.CustomizerServiceDeps{
		Configurator: configurator,
		Cart:         cartService,
		SessionTTL:   cfg.Customizer.SessionTTL,
		Clock:        time.Now,
		Logger:       observability.EventLogger(logger.Named("customizer"), "customizer event"),
	})
	if err != nil {
		logger.Fatal("failed to initialise customizer service", zap.Error(err))
	}
	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Cart:       cartRepo,
		Orders:     orderRepo,
		Pricing:    pricing,
		UnitOfWork: unitOfWork,
		Events:     publisher,
		Meter:      otel.GetMeterProvider().Meter("github.com/Noore22/Cake-Craft/checkout"),
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("checkout"), "checkout event"),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}
	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:     orderRepo,
		Cart:       cartRepo,
		UnitOfWork: unitOfWork,
		Events:     publisher,
		Location:   cfg.Pricing.Location,
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("orders"), "order event"),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}
	sessionService := services.NewSessionService(domain.User{
		ID:        cfg.DemoUser.ID,
		Name:      cfg.DemoUser.Name,
		Email:     cfg.DemoUser.Email,
		Phone:     cfg.DemoUser.Phone,
		Address:   cfg.DemoUser.Address,
		Favorites: cfg.DemoUser.Favorites,
	})

	healthRepo, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		logger.Fatal("failed to initialise health repository", zap.Error(err))
	}
	systemService, err := services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: healthRepo,
		Catalog:          cat,
		Build:            buildInfo,
	})
	if err != nil {
		logger.Fatal("failed to initialise system service", zap.Error(err))
	}

	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithLogger(logger.Named("idempotency")),
	)

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	var backgroundWG sync.WaitGroup
	backgroundWG.Add(2)
	go func() {
		defer backgroundWG.Done()
		idempotency.RunCleanup(backgroundCtx, idempotencyStore, cfg.Idempotency.CleanupInterval, cfg.Idempotency.CleanupBatchSize, logger.Named("idempotency"))
	}()
	go func() {
		defer backgroundWG.Done()
		pruneCustomizerSessions(backgroundCtx, customizerService, logger.Named("customizer"))
	}()

	projectID := strings.TrimSpace(cfg.Firestore.ProjectID)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		handlers.SessionMiddleware(sessionService),
		observability.RequestLoggerMiddleware(projectID),
	}

	healthHandlers := handlers.NewHealthHandlers(handlers.WithHealthSystemService(systemService))

	var opts []handlers.Option
	opts = append(opts, handlers.WithMiddlewares(middlewares...))
	opts = append(opts, handlers.WithHealthHandlers(healthHandlers))
	opts = append(opts, handlers.WithCatalogRoutes(handlers.NewCatalogHandlers(cat, money).Routes))
	opts = append(opts, handlers.WithCustomizerRoutes(handlers.NewCustomizerHandlers(customizerService, configurator, money).Routes))
	opts = append(opts, handlers.WithCartRoutes(handlers.NewCartHandlers(cartService, money).Routes))
	opts = append(opts, handlers.WithCheckoutRoutes(handlers.NewCheckoutHandlers(checkoutService, cat, money,
		handlers.WithCheckoutLocation(cfg.Pricing.Location),
	).Routes))
	opts = append(opts, handlers.WithCheckoutMiddlewares(idempotencyMiddleware))
	opts = append(opts, handlers.WithOrderRoutes(handlers.NewOrderHandlers(orderService, money).Routes))
	opts = append(opts, handlers.WithMeRoutes(handlers.NewMeHandlers(orderService).Routes))
	opts = append(opts, handlers.WithAdminRoutes(handlers.NewAdminHandlers(orderService, money).Routes))

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("cakecraft api listening",
			zap.String("state_backend", cfg.State.Backend),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	backgroundCancel()
	backgroundWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(cfg config.Config, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(os.Getenv("API_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("API_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: cfg.Environment,
		StartedAt:   started,
	}
}

// loadCatalog prefers a local file, then a Cloud Storage object, then the built-in tables.
func loadCatalog(ctx context.Context, logger *zap.Logger, cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if path := strings.TrimSpace(cfg.File); path != "" {
		logger.Info("loading catalog from file", zap.String("path", path))
		return catalog.LoadFile(path)
	}
	if strings.TrimSpace(cfg.Bucket) != "" {
		client, err := cloudstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		logger.Info("loading catalog from storage", zap.String("bucket", cfg.Bucket), zap.String("object", cfg.Object))
		return catalog.LoadObject(ctx, catalog.StorageOpener(client), cfg.Bucket, cfg.Object)
	}
	return catalog.Default(), nil
}

// newOrderPublisher returns a Pub/Sub publisher when a topic is configured and
// a log-only publisher otherwise. The returned stop func flushes and closes.
func newOrderPublisher(ctx context.Context, logger *zap.Logger, cfg config.PubSubConfig) (services.OrderEventPublisher, func(), error) {
	topicID := strings.TrimSpace(cfg.OrderTopic)
	if topicID == "" {
		logger.Info("order topic not configured; logging order events")
		return jobs.NewLogOrderPublisher(logger), func() {}, nil
	}
	if host := strings.TrimSpace(cfg.EmulatorHost); host != "" && os.Getenv(pubsubEmulatorEnv) == "" {
		_ = os.Setenv(pubsubEmulatorEnv, host)
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub client: %w", err)
	}
	publisher, err := jobs.NewPubSubOrderPublisher(client.Topic(topicID))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	stop := func() {
		publisher.Stop()
		if err := client.Close(); err != nil {
			logger.Warn("pubsub close error", zap.Error(err))
		}
	}
	return publisher, stop, nil
}

func dependencyCheck(name string, target pinger, critical bool) repositories.DependencyCheck {
	return repositories.DependencyCheck{
		Name:     name,
		Critical: critical,
		Timeout:  dependencyCheckTimeout,
		Check:    target.Ping,
	}
}

func pruneCustomizerSessions(ctx context.Context, customizer services.CustomizerService, logger *zap.Logger) {
	ticker := time.NewTicker(customizerPruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			if removed := customizer.Prune(tick.UTC()); removed > 0 {
				logger.Debug("customizer sessions expired", zap.Int("removed", removed))
			}
		}
	}
}
