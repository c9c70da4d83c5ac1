package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	"amity-social/pkg/config"
	"amity-social/pkg/database"
	"amity-social/pkg/kafka"
	"amity-social/pkg/lifecycle"
	"amity-social/pkg/logger"
	"amity-social/pkg/middleware"
	"amity-social/pkg/redis"
)

// Application 应用程序框架
// 统一装配配置、日志、基础设施和HTTP服务器
type Application struct {
	serviceName  string
	config       *config.Config
	kratosLogger kratoslog.Logger
	appLogger    logger.Logger
	lifecycle    *lifecycle.Manager

	// 基础设施组件
	postgreSQL    *database.PostgreSQL
	redisClient   *redis.RedisClient
	kafkaProducer *kafka.Producer

	// 中间件
	authMiddleware    *middleware.AuthMiddleware
	loggingMiddleware *middleware.LoggingMiddleware

	httpServer        HTTPServer
	httpRouteRegister func(*gin.Engine)
}

// Option 装配选项
type Option func(*options)

type options struct {
	withPostgres bool
	withKafka    bool
}

// WithPostgres 启用PostgreSQL
func WithPostgres() Option {
	return func(o *options) { o.withPostgres = true }
}

// WithKafka 启用Kafka生产者
func WithKafka() Option {
	return func(o *options) { o.withKafka = true }
}

// NewApplication 创建应用程序
// Redis所有服务都要（在线状态、验证码、推送频道），Postgres和Kafka按需启用
func NewApplication(serviceName string, opts ...Option) *Application {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := config.LoadConfig(serviceName)

	if err := logger.Init(cfg.Logger.Level); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	appLogger := logger.GetLogger()
	kratosLogger := logger.NewKratosStdLogger(cfg.App.Name, cfg.App.Version)

	app := &Application{
		serviceName:       serviceName,
		config:            cfg,
		kratosLogger:      kratosLogger,
		appLogger:         appLogger,
		lifecycle:         lifecycle.NewManager(kratosLogger),
		authMiddleware:    middleware.NewAuthMiddleware(kratosLogger, cfg.App.JWTSecret),
		loggingMiddleware: middleware.NewLoggingMiddleware(kratosLogger),
	}

	app.redisClient = redis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	if o.withPostgres {
		postgreSQL, err := database.NewPostgreSQL(cfg.Database.PostgreSQL.DSN)
		if err != nil {
			kratosLogger.Log(kratoslog.LevelFatal, "msg", "Failed to connect to PostgreSQL", "error", err)
			panic(err)
		}
		app.postgreSQL = postgreSQL
	}

	if o.withKafka {
		kafkaProducer, err := kafka.InitProducer(cfg.Kafka.Brokers)
		if err != nil {
			kratosLogger.Log(kratoslog.LevelFatal, "msg", "Failed to connect to Kafka", "error", err)
			panic(err)
		}
		app.kafkaProducer = kafkaProducer
	}

	return app
}

// EnableHTTP 启用HTTP服务器并挂载基础中间件
func (app *Application) EnableHTTP() HTTPServer {
	if app.httpServer == nil {
		app.httpServer = NewHTTPServer(app.config, app.kratosLogger)
		app.httpServer.RegisterRoutes(func(engine *gin.Engine) {
			engine.Use(app.loggingMiddleware.GinLogging())
			engine.Use(app.loggingMiddleware.GinRecovery())
			engine.Use(app.authMiddleware.GinAuth())
		})
	}
	return app.httpServer
}

// RegisterHTTPRoutes 注册HTTP路由
func (app *Application) RegisterHTTPRoutes(registerFunc func(*gin.Engine)) {
	app.httpRouteRegister = registerFunc
}

// AddLifecycleHook 注册业务层生命周期钩子
func (app *Application) AddLifecycleHook(hook lifecycle.Hook) {
	app.lifecycle.AddHook(hook)
}

// GetPostgreSQL 获取PostgreSQL连接
func (app *Application) GetPostgreSQL() *database.PostgreSQL {
	return app.postgreSQL
}

// GetRedisClient 获取Redis客户端
func (app *Application) GetRedisClient() *redis.RedisClient {
	return app.redisClient
}

// GetKafkaProducer 获取Kafka生产者
func (app *Application) GetKafkaProducer() *kafka.Producer {
	return app.kafkaProducer
}

// GetLogger 获取日志器
func (app *Application) GetLogger() logger.Logger {
	return app.appLogger
}

// GetConfig 获取配置
func (app *Application) GetConfig() *config.Config {
	return app.config
}

// Run 运行应用程序，阻塞直到收到退出信号
func (app *Application) Run() error {
	app.registerLifecycleHooks()

	if err := app.lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start lifecycle: %w", err)
	}

	app.lifecycle.Wait()
	return nil
}

// registerLifecycleHooks 注册框架层生命周期钩子
func (app *Application) registerLifecycleHooks() {
	if app.httpServer != nil {
		if app.httpRouteRegister != nil {
			app.httpServer.RegisterRoutes(app.httpRouteRegister)
		}

		app.lifecycle.AddHook(lifecycle.Hook{
			Name:     "http-server",
			Priority: 100,
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := app.httpServer.Start(ctx); err != nil {
						app.kratosLogger.Log(kratoslog.LevelError, "msg", "HTTP server failed", "error", err)
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return app.httpServer.Stop(ctx)
			},
		})
	}

	app.lifecycle.AddHook(lifecycle.Hook{
		Name:     "infrastructure",
		Priority: 0,
		OnStop: func(ctx context.Context) error {
			if app.kafkaProducer != nil {
				if err := app.kafkaProducer.Close(); err != nil {
					app.kratosLogger.Log(kratoslog.LevelError, "msg", "Failed to close Kafka producer", "error", err)
				}
			}
			if err := app.redisClient.Close(); err != nil {
				app.kratosLogger.Log(kratoslog.LevelError, "msg", "Failed to close Redis", "error", err)
			}
			if app.postgreSQL != nil {
				if err := app.postgreSQL.Close(); err != nil {
					app.kratosLogger.Log(kratoslog.LevelError, "msg", "Failed to close PostgreSQL", "error", err)
				}
			}
			return nil
		},
	})
}
