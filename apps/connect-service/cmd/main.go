package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"amity-social/apps/connect-service/handler"
	"amity-social/apps/connect-service/service"
	"amity-social/pkg/lifecycle"
	"amity-social/pkg/middleware"
	"amity-social/pkg/presence"
	"amity-social/pkg/server"
	"amity-social/pkg/telemetry"
)

func main() {
	serviceName := "connect-service"

	// 初始化OpenTelemetry
	var otelConfig *telemetry.Config
	if os.Getenv("OTEL_DEBUG") == "true" {
		otelConfig = telemetry.DevelopmentConfig(serviceName)
		log.Printf("OpenTelemetry debug mode enabled - traces will be printed to console")
	} else {
		otelConfig = telemetry.DefaultConfig(serviceName)
	}

	if err := telemetry.InitGlobal(otelConfig); err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.ShutdownGlobal(ctx); err != nil {
			log.Printf("Failed to shutdown OpenTelemetry: %v", err)
		}
	}()

	// 创建应用程序，连接网关只依赖Redis
	app := server.NewApplication(serviceName)
	app.EnableHTTP()

	cfg := app.GetConfig()
	directory := presence.NewDirectory(app.GetRedisClient())
	connectService := service.NewService(cfg.Gateway.InstanceID, directory, app.GetRedisClient(), app.GetLogger())

	// 初始化Handler层
	otelMW := middleware.NewOTelMiddleware(serviceName, app.GetLogger())
	wsHandler := handler.NewWSHandler(connectService, cfg.App.JWTSecret, app.GetLogger())

	// 注册HTTP路由
	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		engine.Use(otelMW.GinMiddleware())
		wsHandler.RegisterRoutes(engine)
	})

	// 推送订阅协程随生命周期启停
	app.AddLifecycleHook(lifecycle.Hook{
		Name:     "push-subscriber",
		Priority: 200,
		OnStart: func(ctx context.Context) error {
			return connectService.StartPushSubscriber(ctx)
		},
		OnStop: func(ctx context.Context) error {
			connectService.CleanupAll(ctx)
			return nil
		},
	})

	// 运行应用程序
	if err := app.Run(); err != nil {
		panic(err)
	}
}
