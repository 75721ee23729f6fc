// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	appusecase "github.com/lllypuk/gigwork/internal/application/application"
	"github.com/lllypuk/gigwork/internal/application/dashboard"
	gigapp "github.com/lllypuk/gigwork/internal/application/gig"
	notifapp "github.com/lllypuk/gigwork/internal/application/notification"
	userapp "github.com/lllypuk/gigwork/internal/application/user"
	"github.com/lllypuk/gigwork/internal/config"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	httphandler "github.com/lllypuk/gigwork/internal/handler/http"
	wshandler "github.com/lllypuk/gigwork/internal/handler/websocket"
	"github.com/lllypuk/gigwork/internal/infrastructure/auth"
	"github.com/lllypuk/gigwork/internal/infrastructure/eventbus"
	"github.com/lllypuk/gigwork/internal/infrastructure/healthcheck"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/gigwork/internal/infrastructure/mongodb"
	"github.com/lllypuk/gigwork/internal/infrastructure/oidc"
	"github.com/lllypuk/gigwork/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/gigwork/internal/infrastructure/summary"
	"github.com/lllypuk/gigwork/internal/infrastructure/websocket"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
)

// WebSocket client configuration constants.
const (
	defaultWSWriteWait      = 10 * time.Second
	defaultWSMaxMessageSize = 65536
)

// Container holds all application dependencies and manages their lifecycle.
// It implements httpserver.HealthChecker for unified health endpoint support.
type Container struct {
	// Configuration
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	MongoDB      *mongo.Client
	MongoDBName  string
	Redis        *redis.Client
	EventBus     *eventbus.RedisEventBus
	BusMetrics   *metrics.EventBusMetrics
	Hub          *websocket.Hub
	Broadcaster  *websocket.Broadcaster
	SummaryCache *summary.RedisCache
	TokenStore   *auth.TokenStore
	TokenClient  *oidc.TokenClient
	DeadLetter   *eventbus.DeadLetterHandler
	DLQChecker   *healthcheck.DeadLetterChecker

	// Repositories
	UserRepo         *mongodb.MongoUserRepository
	GigRepo          *mongodb.MongoGigRepository
	ApplicationRepo  *mongodb.MongoApplicationRepository
	NotificationRepo *mongodb.MongoNotificationRepository
	TxRunner         *mongodb.MongoTxRunner

	// Use cases, bundled per handler interface
	GigService          *gigService
	UserService         *userService
	ApplicationService  *applicationService
	NotificationService *notificationService
	DashboardService    *dashboardService

	// HTTP handlers
	AuthHandler         *httphandler.AuthHandler
	UserHandler         *httphandler.UserHandler
	GigHandler          *httphandler.GigHandler
	ApplicationHandler  *httphandler.ApplicationHandler
	NotificationHandler *httphandler.NotificationHandler
	DashboardHandler    *httphandler.DashboardHandler
	WSHandler           *wshandler.Handler

	// Event handlers
	LogHandler  *eventbus.LoggingHandler
	PushHandler *eventbus.NotificationPushHandler

	// Auth middleware components
	TokenValidator middleware.TokenValidator
	UserResolver   middleware.UserResolver
	OIDCValidator  oidc.TokenValidator // for cleanup on shutdown
}

// Ensure Container implements httpserver.HealthChecker.
var _ httpserver.HealthChecker = (*Container)(nil)

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates a new dependency injection container.
// The wiring mode (real/mock) is determined by config.App.Mode.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logWiringMode()

	if err := c.setupInfrastructure(); err != nil {
		// Clean up any partially initialized resources
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupRepositories()
	c.setupUseCases()
	c.setupAuth()
	c.setupHTTPHandlers()
	c.setupEventHandlers()

	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

// logWiringMode logs the current wiring mode configuration.
func (c *Container) logWiringMode() {
	mode := c.Config.App.Mode
	if mode == "" {
		mode = config.AppModeReal
	}

	if c.Config.App.IsMockMode() {
		c.Logger.Warn("container starting in MOCK mode",
			slog.String("mode", string(mode)),
			slog.Bool("is_development", c.Config.IsDevelopment()),
			slog.Bool("is_production", c.Config.IsProduction()),
		)
	} else {
		c.Logger.Info("container starting in REAL mode",
			slog.String("mode", string(mode)),
			slog.Bool("is_development", c.Config.IsDevelopment()),
			slog.Bool("is_production", c.Config.IsProduction()),
		)
	}
}

// validateWiring ensures all required dependencies are properly initialized.
func (c *Container) validateWiring() error {
	var errs []error

	if c.MongoDB == nil {
		errs = append(errs, errors.New("mongodb client not initialized"))
	}
	if c.Redis == nil {
		errs = append(errs, errors.New("redis client not initialized"))
	}
	if c.Hub == nil {
		errs = append(errs, errors.New("websocket hub not initialized"))
	}
	if c.EventBus == nil {
		errs = append(errs, errors.New("event bus not initialized"))
	}
	if c.TokenValidator == nil {
		errs = append(errs, errors.New("token validator not initialized"))
	}
	if c.Config.App.IsRealMode() {
		if c.AuthHandler == nil {
			errs = append(errs, errors.New("auth handler not initialized in real mode"))
		}
		if c.GigHandler == nil {
			errs = append(errs, errors.New("gig handler not initialized in real mode"))
		}
		if c.WSHandler == nil {
			errs = append(errs, errors.New("websocket handler not initialized in real mode"))
		}
		if c.Config.IsProduction() {
			if _, isStatic := c.TokenValidator.(*middleware.StaticTokenValidator); isStatic {
				errs = append(errs, errors.New("static token validator is not allowed in production"))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// setupInfrastructure initializes infrastructure components (MongoDB, Redis, EventBus, Hub).
func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	c.setupEventBus()
	c.setupHub()

	if err := c.setupBroadcaster(ctx); err != nil {
		return fmt.Errorf("broadcaster: %w", err)
	}

	c.SummaryCache = summary.NewRedisCache(summary.Config{
		Client:    c.Redis,
		KeyPrefix: c.Config.Summary.KeyPrefix,
		TTL:       c.Config.Summary.TTL,
	})

	c.TokenStore = auth.NewTokenStore(auth.TokenStoreConfig{
		Client:    c.Redis,
		KeyPrefix: c.Config.Auth.TokenKeyPrefix,
	})

	c.DeadLetter = eventbus.NewDeadLetterHandler(c.Redis, eventbus.WithDeadLetterLogger(c.Logger))
	c.DLQChecker = healthcheck.NewDeadLetterChecker(c.DeadLetter)

	return nil
}

// setupMongoDB initializes the MongoDB client.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.MongoDB = client
	c.MongoDBName = c.Config.MongoDB.Database

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	// Create all necessary indexes
	db := client.Database(c.Config.MongoDB.Database)
	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")

	return nil
}

// setupRedis initializes the Redis client.
func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)

	return nil
}

// setupEventBus initializes the event bus with Prometheus instrumentation.
func (c *Container) setupEventBus() {
	c.BusMetrics = metrics.NewEventBusMetrics(prometheus.DefaultRegisterer)

	c.EventBus = eventbus.NewRedisEventBus(
		c.Redis,
		eventbus.WithLogger(c.Logger),
		eventbus.WithChannelPrefix(c.Config.EventBus.RedisChannelPrefix),
		eventbus.WithMetrics(c.BusMetrics),
	)

	c.Logger.Debug("event bus initialized",
		slog.String("type", c.Config.EventBus.Type),
		slog.String("prefix", c.Config.EventBus.RedisChannelPrefix),
	)
}

// setupHub initializes the WebSocket hub.
func (c *Container) setupHub() {
	c.Hub = websocket.NewHub(
		websocket.WithHubLogger(c.Logger),
	)

	c.Logger.Debug("websocket hub initialized")
}

// setupBroadcaster initializes and starts the WebSocket broadcaster.
func (c *Container) setupBroadcaster(ctx context.Context) error {
	c.Broadcaster = websocket.NewBroadcaster(
		c.Hub,
		c.EventBus,
		websocket.WithBroadcasterLogger(c.Logger),
		websocket.WithEventTypes(websocket.DefaultEventTypes()),
	)

	if err := c.Broadcaster.Start(ctx); err != nil {
		return fmt.Errorf("failed to start broadcaster: %w", err)
	}

	c.Logger.InfoContext(ctx, "websocket broadcaster started")
	return nil
}

// setupRepositories initializes all repository implementations.
func (c *Container) setupRepositories() {
	db := c.MongoDB.Database(c.MongoDBName)

	c.UserRepo = mongodb.NewMongoUserRepository(
		db.Collection(mongodbinfra.CollectionUsers),
		mongodb.WithUserRepoLogger(c.Logger),
	)

	c.GigRepo = mongodb.NewMongoGigRepository(
		db.Collection(mongodbinfra.CollectionGigs),
		mongodb.WithGigRepoLogger(c.Logger),
	)

	c.ApplicationRepo = mongodb.NewMongoApplicationRepository(
		db.Collection(mongodbinfra.CollectionApplications),
		mongodb.WithApplicationRepoLogger(c.Logger),
	)

	c.NotificationRepo = mongodb.NewMongoNotificationRepository(
		db.Collection(mongodbinfra.CollectionNotifications),
		mongodb.WithNotificationRepoLogger(c.Logger),
	)

	// Multi-document writes (accept workflow, completion) go through a
	// session so they commit as one unit.
	c.TxRunner = mongodb.NewMongoTxRunner(c.MongoDB)

	c.Logger.Debug("repositories initialized")
}

// setupUseCases wires the application layer and bundles it into the
// per-handler service structs.
func (c *Container) setupUseCases() {
	c.GigService = &gigService{
		create: gigapp.NewCreateGigUseCase(c.GigRepo, c.UserRepo, c.EventBus, c.Logger),
		get:    gigapp.NewGetGigUseCase(c.GigRepo),
		list:   gigapp.NewListGigsUseCase(c.GigRepo),
		changeStatus: gigapp.NewChangeStatusUseCase(
			c.GigRepo, c.UserRepo, c.NotificationRepo,
			c.TxRunner, c.EventBus, c.SummaryCache, c.Logger,
		),
		updateProgress:    gigapp.NewUpdateProgressUseCase(c.GigRepo, c.Logger),
		addMilestone:      gigapp.NewAddMilestoneUseCase(c.GigRepo, c.Logger),
		completeMilestone: gigapp.NewCompleteMilestoneUseCase(c.GigRepo, c.NotificationRepo, c.Logger),
	}

	c.UserService = &userService{
		register: userapp.NewRegisterUserUseCase(c.UserRepo, c.EventBus, c.Logger),
		get:      userapp.NewGetUserUseCase(c.UserRepo),
		update:   userapp.NewUpdateProfileUseCase(c.UserRepo),
	}

	c.ApplicationService = &applicationService{
		submit: appusecase.NewSubmitApplicationUseCase(
			c.ApplicationRepo, c.GigRepo, c.UserRepo, c.NotificationRepo,
			c.TxRunner, c.EventBus, c.Logger,
		),
		accept: appusecase.NewAcceptApplicationUseCase(
			c.ApplicationRepo, c.GigRepo, c.NotificationRepo,
			c.TxRunner, c.EventBus, c.SummaryCache, c.Logger,
		),
		reject: appusecase.NewRejectApplicationUseCase(
			c.ApplicationRepo, c.GigRepo, c.NotificationRepo,
			c.TxRunner, c.EventBus, c.Logger,
		),
		listByGig:       appusecase.NewListByGigUseCase(c.ApplicationRepo, c.GigRepo),
		listByApplicant: appusecase.NewListByApplicantUseCase(c.ApplicationRepo),
	}

	c.NotificationService = &notificationService{
		list:        notifapp.NewListNotificationsUseCase(c.NotificationRepo),
		markRead:    notifapp.NewMarkReadUseCase(c.NotificationRepo),
		markAllRead: notifapp.NewMarkAllReadUseCase(c.NotificationRepo),
	}

	c.DashboardService = &dashboardService{
		client:     dashboard.NewClientDashboardUseCase(c.GigRepo, c.SummaryCache, c.Logger),
		freelancer: dashboard.NewFreelancerDashboardUseCase(c.GigRepo, c.SummaryCache, c.Logger),
	}

	c.Logger.Debug("use cases initialized")
}

// setupAuth configures the token validator, the token endpoint client and
// the user resolver.
func (c *Container) setupAuth() {
	c.TokenClient = oidc.NewTokenClient(oidc.TokenClientConfig{
		IssuerURL:    c.Config.OIDC.IssuerURL,
		ClientID:     c.Config.OIDC.ClientID,
		ClientSecret: c.Config.OIDC.ClientSecret,
		Logger:       c.Logger,
	})

	c.UserResolver = middleware.NewUserResolverAdapter(c.UserService.get)

	if c.Config.App.IsMockMode() {
		c.Logger.Warn("mock mode: using static token validator")
		c.TokenValidator = middleware.NewStaticTokenValidator()
		return
	}

	validator, err := oidc.NewTokenValidator(oidc.ValidatorConfig{
		IssuerURL:       c.Config.OIDC.IssuerURL,
		JWKSURL:         c.Config.OIDC.JWKSURL,
		Audience:        c.Config.OIDC.Audience,
		Leeway:          c.Config.OIDC.Leeway,
		RefreshInterval: c.Config.OIDC.RefreshInterval,
		Logger:          c.Logger,
	})
	if err != nil {
		c.Logger.Warn("failed to create OIDC token validator, falling back to static validator",
			slog.String("error", err.Error()),
		)
		c.TokenValidator = middleware.NewStaticTokenValidator()
		return
	}

	c.OIDCValidator = validator
	c.TokenValidator = middleware.NewOIDCTokenValidatorAdapter(validator)

	c.Logger.Info("token validator initialized",
		slog.String("issuer", c.Config.OIDC.IssuerURL),
		slog.String("audience", c.Config.OIDC.Audience),
	)
}

// setupHTTPHandlers creates the HTTP and WebSocket handlers.
func (c *Container) setupHTTPHandlers() {
	c.AuthHandler = httphandler.NewAuthHandler(c.TokenClient, c.TokenStore)
	c.UserHandler = httphandler.NewUserHandler(c.UserService)
	c.GigHandler = httphandler.NewGigHandler(c.GigService)
	c.ApplicationHandler = httphandler.NewApplicationHandler(c.ApplicationService)
	c.NotificationHandler = httphandler.NewNotificationHandler(c.NotificationService)
	c.DashboardHandler = httphandler.NewDashboardHandler(c.DashboardService)

	c.WSHandler = wshandler.NewHandler(
		c.Hub,
		wshandler.WithHandlerLogger(c.Logger),
		wshandler.WithTokenValidator(c.TokenValidator),
		wshandler.WithHandlerConfig(wshandler.HandlerConfig{
			ReadBufferSize:  c.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: c.Config.WebSocket.WriteBufferSize,
			Logger:          c.Logger,
			ClientConfig: websocket.ClientConfig{
				ReadBufferSize:  c.Config.WebSocket.ReadBufferSize,
				WriteBufferSize: c.Config.WebSocket.WriteBufferSize,
				PingInterval:    c.Config.WebSocket.PingInterval,
				PongWait:        c.Config.WebSocket.PongTimeout,
				WriteWait:       defaultWSWriteWait,
				MaxMessageSize:  defaultWSMaxMessageSize,
			},
		}),
	)

	c.Logger.Info("HTTP handlers initialized")
}

// setupEventHandlers creates the event handlers registered on the bus.
func (c *Container) setupEventHandlers() {
	c.LogHandler = eventbus.NewLoggingHandler(c.Logger)
	c.PushHandler = eventbus.NewNotificationPushHandler(c.Hub, c.Logger)

	c.Logger.Debug("event handlers initialized")
}

// registerEventHandlers subscribes the event handlers before the bus starts.
// The API process pushes committed notifications to connected recipients;
// summary warming runs in the worker process.
func (c *Container) registerEventHandlers() error {
	if err := c.EventBus.Subscribe(notifdomain.EventTypeCreated, c.PushHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe push handler: %w", err)
	}

	if c.Config.IsDevelopment() {
		for _, eventType := range allEventTypes() {
			if err := c.EventBus.Subscribe(eventType, c.LogHandler.Handle); err != nil {
				return fmt.Errorf("failed to subscribe logging handler: %w", err)
			}
		}
	}

	return nil
}

// allEventTypes lists every event type published by the domain layer.
func allEventTypes() []string {
	return []string{
		gigdomain.EventTypeCreated,
		gigdomain.EventTypeAssigned,
		gigdomain.EventTypeStatusChanged,
		gigdomain.EventTypeCompleted,
		appdomain.EventTypeSubmitted,
		appdomain.EventTypeAccepted,
		appdomain.EventTypeRejected,
		notifdomain.EventTypeCreated,
		userdomain.EventTypeRegistered,
	}
}

// Close gracefully closes all container resources.
// Resources are closed in reverse order of initialization.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	// Close OIDC validator (stops JWKS refresh goroutine)
	if c.OIDCValidator != nil {
		if err := c.OIDCValidator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("oidc validator close: %w", err))
		} else {
			c.Logger.Debug("oidc validator closed")
		}
	}

	// Close Hub
	if c.Hub != nil {
		c.Hub.Stop()
		c.Logger.Debug("websocket hub stopped")
	}

	// Close EventBus
	if c.EventBus != nil {
		if err := c.EventBus.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("event bus shutdown: %w", err))
		} else {
			c.Logger.Debug("event bus stopped")
		}
	}

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	// Close MongoDB
	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}

// StartEventBus starts the event bus and registers all handlers.
// This should be called before the HTTP server starts accepting requests.
func (c *Container) StartEventBus(ctx context.Context) error {
	if err := c.registerEventHandlers(); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	go func() {
		if err := c.EventBus.Start(ctx); err != nil {
			c.Logger.Error("event bus error", slog.String("error", err.Error()))
		}
	}()

	c.Logger.InfoContext(ctx, "event bus started")
	return nil
}

// StartHub starts the WebSocket hub.
// This should be called before the HTTP server starts accepting requests.
func (c *Container) StartHub(ctx context.Context) {
	go c.Hub.Run(ctx)
	c.Logger.InfoContext(ctx, "websocket hub started")
}

// IsReady implements httpserver.HealthChecker.
// It checks if all infrastructure components are healthy.
func (c *Container) IsReady(ctx context.Context) bool {
	if c.MongoDB == nil {
		return false
	}
	if err := c.MongoDB.Ping(ctx, nil); err != nil {
		c.Logger.WarnContext(ctx, "mongodb health check failed", slog.String("error", err.Error()))
		return false
	}

	if c.Redis == nil {
		return false
	}
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		c.Logger.WarnContext(ctx, "redis health check failed", slog.String("error", err.Error()))
		return false
	}

	if c.Hub == nil || !c.Hub.IsRunning() {
		c.Logger.WarnContext(ctx, "websocket hub is not running")
		return false
	}

	return true
}

// GetHealthStatus implements httpserver.HealthChecker.
// It returns detailed health status of all components.
func (c *Container) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	var statuses []httpserver.ComponentStatus

	mongoStatus := httpserver.ComponentStatus{Name: "mongodb", Status: httpserver.StatusHealthy}
	if c.MongoDB == nil {
		mongoStatus.Status = httpserver.StatusUnhealthy
		mongoStatus.Message = "client not initialized"
	} else if err := c.MongoDB.Ping(ctx, nil); err != nil {
		mongoStatus.Status = httpserver.StatusUnhealthy
		mongoStatus.Message = err.Error()
	}
	statuses = append(statuses, mongoStatus)

	redisStatus := httpserver.ComponentStatus{Name: "redis", Status: httpserver.StatusHealthy}
	if c.Redis == nil {
		redisStatus.Status = httpserver.StatusUnhealthy
		redisStatus.Message = "client not initialized"
	} else if err := c.Redis.Ping(ctx).Err(); err != nil {
		redisStatus.Status = httpserver.StatusUnhealthy
		redisStatus.Message = err.Error()
	}
	statuses = append(statuses, redisStatus)

	hubStatus := httpserver.ComponentStatus{Name: "websocket_hub", Status: httpserver.StatusHealthy}
	if c.Hub == nil {
		hubStatus.Status = httpserver.StatusUnhealthy
		hubStatus.Message = "hub not initialized"
	} else if !c.Hub.IsRunning() {
		hubStatus.Status = httpserver.StatusUnhealthy
		hubStatus.Message = "hub not running"
	}
	statuses = append(statuses, hubStatus)

	eventBusStatus := httpserver.ComponentStatus{Name: "eventbus", Status: httpserver.StatusHealthy}
	if c.EventBus == nil {
		eventBusStatus.Status = httpserver.StatusUnhealthy
		eventBusStatus.Message = "event bus not initialized"
	} else if !c.EventBus.IsRunning() {
		eventBusStatus.Status = httpserver.StatusDegraded
		eventBusStatus.Message = "event bus not running"
	}
	statuses = append(statuses, eventBusStatus)

	// Parked events are a warning, not an outage
	dlqStatus := httpserver.ComponentStatus{Name: "dead_letter_queue", Status: httpserver.StatusHealthy}
	if c.DLQChecker == nil {
		dlqStatus.Status = httpserver.StatusUnhealthy
		dlqStatus.Message = "checker not initialized"
	} else if check := c.DLQChecker.Check(ctx); !check.Healthy {
		dlqStatus.Status = httpserver.StatusDegraded
		dlqStatus.Message = check.Message
	}
	statuses = append(statuses, dlqStatus)

	return statuses
}

// gigService bundles the gig use cases behind httphandler.GigService.
type gigService struct {
	create            *gigapp.CreateGigUseCase
	get               *gigapp.GetGigUseCase
	list              *gigapp.ListGigsUseCase
	changeStatus      *gigapp.ChangeStatusUseCase
	updateProgress    *gigapp.UpdateProgressUseCase
	addMilestone      *gigapp.AddMilestoneUseCase
	completeMilestone *gigapp.CompleteMilestoneUseCase
}

var _ httphandler.GigService = (*gigService)(nil)

func (s *gigService) CreateGig(ctx context.Context, cmd gigapp.CreateGigCommand) (gigapp.Result, error) {
	return s.create.Execute(ctx, cmd)
}

func (s *gigService) GetGig(ctx context.Context, gigID uuid.UUID) (gigapp.Result, error) {
	return s.get.Execute(ctx, gigID)
}

func (s *gigService) ListGigs(ctx context.Context, query gigapp.ListGigsQuery) (gigapp.ListResult, error) {
	return s.list.Execute(ctx, query)
}

func (s *gigService) ChangeStatus(ctx context.Context, cmd gigapp.ChangeStatusCommand) (gigapp.Result, error) {
	return s.changeStatus.Execute(ctx, cmd)
}

func (s *gigService) UpdateProgress(ctx context.Context, cmd gigapp.UpdateProgressCommand) (gigapp.Result, error) {
	return s.updateProgress.Execute(ctx, cmd)
}

func (s *gigService) AddMilestone(ctx context.Context, cmd gigapp.AddMilestoneCommand) (gigapp.Result, error) {
	return s.addMilestone.Execute(ctx, cmd)
}

func (s *gigService) CompleteMilestone(ctx context.Context, cmd gigapp.CompleteMilestoneCommand) (gigapp.Result, error) {
	return s.completeMilestone.Execute(ctx, cmd)
}

// userService bundles the profile use cases behind httphandler.UserService.
type userService struct {
	register *userapp.RegisterUserUseCase
	get      *userapp.GetUserUseCase
	update   *userapp.UpdateProfileUseCase
}

var _ httphandler.UserService = (*userService)(nil)

func (s *userService) Register(ctx context.Context, cmd userapp.RegisterUserCommand) (userapp.Result, error) {
	return s.register.Execute(ctx, cmd)
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (userapp.Result, error) {
	return s.get.Execute(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, cmd userapp.UpdateProfileCommand) (userapp.Result, error) {
	return s.update.Execute(ctx, cmd)
}

// applicationService bundles the application workflow use cases behind
// httphandler.ApplicationService.
type applicationService struct {
	submit          *appusecase.SubmitApplicationUseCase
	accept          *appusecase.AcceptApplicationUseCase
	reject          *appusecase.RejectApplicationUseCase
	listByGig       *appusecase.ListByGigUseCase
	listByApplicant *appusecase.ListByApplicantUseCase
}

var _ httphandler.ApplicationService = (*applicationService)(nil)

func (s *applicationService) Submit(
	ctx context.Context,
	cmd appusecase.SubmitApplicationCommand,
) (appusecase.Result, error) {
	return s.submit.Execute(ctx, cmd)
}

func (s *applicationService) Accept(
	ctx context.Context,
	cmd appusecase.AcceptApplicationCommand,
) (appusecase.AcceptResult, error) {
	return s.accept.Execute(ctx, cmd)
}

func (s *applicationService) Reject(
	ctx context.Context,
	cmd appusecase.RejectApplicationCommand,
) (appusecase.Result, error) {
	return s.reject.Execute(ctx, cmd)
}

func (s *applicationService) ListByGig(
	ctx context.Context,
	query appusecase.ListByGigQuery,
) (appusecase.ListResult, error) {
	return s.listByGig.Execute(ctx, query)
}

func (s *applicationService) ListByApplicant(
	ctx context.Context,
	query appusecase.ListByApplicantQuery,
) (appusecase.ListResult, error) {
	return s.listByApplicant.Execute(ctx, query)
}

// notificationService bundles the inbox use cases behind
// httphandler.NotificationService.
type notificationService struct {
	list        *notifapp.ListNotificationsUseCase
	markRead    *notifapp.MarkReadUseCase
	markAllRead *notifapp.MarkAllReadUseCase
}

var _ httphandler.NotificationService = (*notificationService)(nil)

func (s *notificationService) List(ctx context.Context, query notifapp.ListQuery) (notifapp.ListResult, error) {
	return s.list.Execute(ctx, query)
}

func (s *notificationService) MarkRead(
	ctx context.Context,
	cmd notifapp.MarkReadCommand,
) (*notifdomain.Notification, error) {
	return s.markRead.Execute(ctx, cmd)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.markAllRead.Execute(ctx, userID)
}

// dashboardService bundles the dashboard use cases behind
// httphandler.DashboardService.
type dashboardService struct {
	client     *dashboard.ClientDashboardUseCase
	freelancer *dashboard.FreelancerDashboardUseCase
}

var _ httphandler.DashboardService = (*dashboardService)(nil)

func (s *dashboardService) ClientSummary(ctx context.Context, userID uuid.UUID) (dashboard.ClientSummary, error) {
	return s.client.Execute(ctx, userID)
}

func (s *dashboardService) FreelancerSummary(
	ctx context.Context,
	userID uuid.UUID,
) (dashboard.FreelancerSummary, error) {
	return s.freelancer.Execute(ctx, userID)
}
