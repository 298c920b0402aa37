package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingo_learn_client/internal/client"
	"lingo_learn_client/internal/config"
	"lingo_learn_client/internal/controller"
	"lingo_learn_client/internal/repository"
	"lingo_learn_client/internal/service"
	"lingo_learn_client/pkg/kvstore"
	"lingo_learn_client/pkg/logger"
	"lingo_learn_client/pkg/monitoring"
	"lingo_learn_client/pkg/security"
	"lingo_learn_client/pkg/tracing"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// App 同步核心的装配根：本地kv存储、远端API客户端、缓存仓库、
// 三个状态服务，以及暴露给UI壳的本地HTTP接口。
// 生命周期与宿主进程一致，构造与销毁显式暴露，便于测试。
type App struct {
	Config    *config.Config
	Router    *gin.Engine
	Store     kvstore.Store
	APIClient *client.Client

	repos          *repositories
	services       *services
	tracerProvider *sdktrace.TracerProvider
}

type repositories struct {
	tokens       *repository.TokenStore
	courseCache  *repository.CourseCache
	profileCache *repository.ProfileCache
	prefs        *repository.PrefsRepository
}

type services struct {
	auth    *service.AuthService
	course  *service.CourseService
	profile *service.ProfileService
}

type controllers struct {
	auth    *controller.AuthController
	course  *controller.CourseController
	profile *controller.ProfileController
	prefs   *controller.PrefsController
	health  *controller.HealthController
}

func openStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return kvstore.OpenRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
	case "memory":
		return kvstore.NewMemory(), nil
	default:
		return kvstore.OpenSQLite(cfg.Cache.Path)
	}
}

func (a *App) initRepositories(cfg *config.Config, store kvstore.Store) *repositories {
	return &repositories{
		tokens:       repository.NewTokenStore(store, cfg.Token.EncryptionKey),
		courseCache:  repository.NewCourseCache(store, cfg.Cache.CourseTTL),
		profileCache: repository.NewProfileCache(store, cfg.Cache.ProfileTTL),
		prefs:        repository.NewPrefsRepository(store),
	}
}

func (a *App) initServices(repos *repositories, apiClient *client.Client) *services {
	return &services{
		auth:    service.NewAuthService(apiClient, repos.tokens),
		course:  service.NewCourseService(apiClient, repos.courseCache),
		profile: service.NewProfileService(apiClient, repos.profileCache),
	}
}

func (a *App) initControllers(s *services, repos *repositories, apiClient *client.Client, store kvstore.Store) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		course:  controller.NewCourseController(s.course),
		profile: controller.NewProfileController(s.profile, apiClient),
		prefs:   controller.NewPrefsController(repos.prefs),
		health:  controller.NewHealthController(store),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// ApplyConfig 配置热更新回调：运行时调整TTL
func (a *App) ApplyConfig(cfg *config.Config) {
	a.repos.courseCache.SetTTL(cfg.Cache.CourseTTL)
	a.repos.profileCache.SetTTL(cfg.Cache.ProfileTTL)
	logger.Log.Info("config reloaded",
		zap.Duration("courseTTL", cfg.Cache.CourseTTL),
		zap.Duration("profileTTL", cfg.Cache.ProfileTTL))
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	store, err := openStore(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to open local store", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		Store:  store,
	}

	repos := app.initRepositories(cfg, store)
	app.repos = repos

	apiClient := client.New(&cfg.API, repos.tokens)
	app.APIClient = apiClient

	services := app.initServices(repos, apiClient)
	app.services = services
	controllers := app.initControllers(services, repos, apiClient, store)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lingo-sync-client", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers)

	return app
}

// Run 启动本地接口并在启动后恢复会话，收到信号后优雅退出
func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Sync client listening on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 冷启动会话恢复；失败不阻塞启动，状态保持未登录
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.services.auth.CheckAuth(ctx); err != nil {
			logger.Log.Warn("startup session check failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.Close()
	log.Println("Sync client exiting")
}

// Close 显式销毁，释放存储与追踪资源
func (a *App) Close() {
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if err := a.Store.Close(); err != nil {
		logger.Log.Error("Failed to close local store", zap.Error(err))
	}
	_ = logger.Log.Sync()
}
