// Package app assembles the service: configuration, observability,
// storage, the middleware chain and the HTTP routes.
package app

import (
	contextPkg "context"
	"fmt"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appcache "github.com/dkozyrev/softvault/pkg/cache"
	"github.com/dkozyrev/softvault/pkg/configs"
	"github.com/dkozyrev/softvault/pkg/internal/audit"
	"github.com/dkozyrev/softvault/pkg/internal/directory"
	"github.com/dkozyrev/softvault/pkg/internal/jobs"
	"github.com/dkozyrev/softvault/pkg/internal/router"
	"github.com/dkozyrev/softvault/pkg/internal/storage"
	"github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/metrics"
	"github.com/dkozyrev/softvault/pkg/middleware"
	"github.com/dkozyrev/softvault/pkg/scheduler"
	"github.com/dkozyrev/softvault/pkg/tracing"
)

type App struct {
	Engine      *gin.Engine
	config      *configs.AppConfig
	manager     *storage.Manager
	scheduler   *scheduler.Scheduler
	auditCancel contextPkg.CancelFunc
}

// NewApp builds a ready-to-run application. Initialization failures are
// fatal: a catalog without its database or blob store has nothing to
// serve.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()

	resolver := newResolver(config, manager)
	responseCache := newResponseCache(manager)

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/download$`})),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.Breaker),
		middleware.StorageMiddleware(manager),
		middleware.AuthMiddleware(config.Directory, resolver),
	)

	sched := startScheduler(manager, config)
	if sched != nil {
		engine.Use(middleware.SchedulerMiddleware(sched))
	}

	router.RegisterAPIRoutes(engine.Group("/api/v1"), router.Options{Cache: responseCache})

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	auditCancel := startAudit(manager)

	return &App{
		Engine:      engine,
		config:      config,
		manager:     manager,
		scheduler:   sched,
		auditCancel: auditCancel,
	}
}

// startAudit tails the catalog event topics into the audit log. Without a
// configured queue there is nothing to tail.
func startAudit(manager *storage.Manager) contextPkg.CancelFunc {
	mqc := manager.GetMQClient()
	if mqc == nil {
		return nil
	}

	ctx, cancel := contextPkg.WithCancel(contextPkg.Background())

	if err := audit.NewConsumer(mqc).Start(ctx); err != nil {
		log.Logger().Warn().Err(err).Msg("audit consumer failed to start")
		cancel()
		return nil
	}

	return cancel
}

// newResolver builds the directory client backed by the shared KV cache.
// Without LDAP configuration every caller stays a plain user.
func newResolver(config *configs.AppConfig, manager *storage.Manager) directory.Resolver {
	if !config.Directory.Enabled || config.Directory.URL == "" {
		return nil
	}

	kvc := manager.GetKVClient()
	if kvc == nil {
		log.Logger().Warn().Msg("kv store unavailable, directory lookups run uncached")
		return directory.New(&config.Directory, &config.Breaker, nil)
	}

	return directory.New(&config.Directory, &config.Breaker, kvc.KVStore)
}

func newResponseCache(manager *storage.Manager) *appcache.Cache {
	kvc := manager.GetKVClient()
	if kvc == nil {
		return nil
	}

	return appcache.NewCache(kvc.KVStore)
}

func startScheduler(manager *storage.Manager, config *configs.AppConfig) *scheduler.Scheduler {
	sched, err := scheduler.NewScheduler()
	if err != nil {
		log.Logger().Error().Err(err).Msg("scheduler init failed, background jobs disabled")
		return nil
	}

	if err := jobs.RegisterCronJobs(sched, manager, &config.Blob); err != nil {
		log.Logger().Error().Err(err).Msg("job registration failed")
	}

	sched.Start()

	return sched
}

// Run serves HTTP until the listener stops.
func (a *App) Run() error {
	return a.Engine.Run(fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port))
}

// Shutdown releases the scheduler, storage clients and the tracer.
func (a *App) Shutdown(ctx contextPkg.Context) error {
	if a.auditCancel != nil {
		a.auditCancel()
	}

	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			log.Logger().Warn().Err(err).Msg("scheduler shutdown failed")
		}
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		log.Logger().Warn().Err(err).Msg("tracer shutdown failed")
	}

	return a.manager.Close()
}
