package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"medboard_backend/internal/config"
	"medboard_backend/internal/controller"
	"medboard_backend/internal/llm"
	"medboard_backend/internal/repository"
	"medboard_backend/internal/service"
	"medboard_backend/pkg/configwatcher"
	"medboard_backend/pkg/database"
	"medboard_backend/pkg/logger"
	"medboard_backend/pkg/monitoring"
	"medboard_backend/pkg/security"
	"medboard_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	response *repository.ResponseRepository
	cache    *repository.AnalyticsCacheRepository
}

type services struct {
	llm        llm.Provider
	tagging    *service.TaggingService
	question   *service.QuestionService
	analytics  *service.AnalyticsService
	auth       *service.AuthService
	autoTagger *service.AutoTaggingService
}

type controllers struct {
	auth      *controller.AuthController
	question  *controller.QuestionController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		question: repository.NewQuestionRepository(db),
		response: repository.NewResponseRepository(db),
		cache:    repository.NewAnalyticsCacheRepository(rdb, time.Duration(cfg.Analytics.CacheTTLSeconds)*time.Second),
	}
}

func (a *App) initServices(ctx context.Context, repos *repositories, cfg *config.Config) *services {
	s := &services{}

	provider, err := llm.NewProvider(ctx, cfg.LLM, logger.Log)
	if err != nil {
		// questions still come from stored and canned fallbacks
		logger.Log.Error("LLM provider unavailable, generation and tagging will degrade",
			zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		provider = llm.Unavailable{Reason: err}
	}
	s.llm = provider

	// 分类后端在启动时确定，之后只读
	s.tagging = service.NewTaggingService(service.NewTaggingBackend(cfg.Tagging, provider))
	logger.Log.Info("Tagging backend selected", zap.String("backend", s.tagging.Backend()))

	s.question = service.NewQuestionService(
		repos.question,
		repos.response,
		service.NewQuestionGenerator(provider),
		s.tagging,
		service.NewFeedbackService(provider),
		repos.cache,
	)
	s.analytics = service.NewAnalyticsService(repos.response, repos.cache)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.autoTagger = service.NewAutoTaggingService(repos.question, s.tagging)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		question:  controller.NewQuestionController(s.question),
		analytics: controller.NewAnalyticsController(s.analytics),
		health:    controller.NewHealthController(db, s.tagging.Backend(), s.llm.ModelID()),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// backfillInterval is how often untagged questions are sent to the tagger,
// or zero when the backfill is off. The local backend only produces default
// records, so there is nothing to backfill with it.
func backfillInterval(cfg config.TaggingConfig, backend string) time.Duration {
	if cfg.BackfillIntervalHours <= 0 || backend == service.BackendLocalLLM {
		return 0
	}
	return time.Duration(cfg.BackfillIntervalHours) * time.Hour
}

func (a *App) startBackgroundTasks(s *services) {
	interval := backfillInterval(a.Config.Tagging, s.tagging.Backend())
	if interval == 0 {
		logger.Log.Info("题目自动分类任务未启用", zap.String("backend", s.tagging.Backend()))
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
				s.autoTagger.RunAutoTagging(a.ctx)
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			// 缓存不可用时直接查库
			logger.Log.Warn("Redis unavailable, analytics cache disabled", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	repos := app.initRepositories(db, app.Redis, cfg)
	services := app.initServices(ctx, repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("medboard-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go configwatcher.WatchConfig(a.ctx, filepath.Join(configDir, "config.yaml"), func(cfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	})

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 停止后台任务与配置监听
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
