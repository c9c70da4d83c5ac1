package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"amity-social/apps/user-service/dao"
	"amity-social/apps/user-service/handler"
	"amity-social/apps/user-service/model"
	"amity-social/apps/user-service/service"
	"amity-social/pkg/middleware"
	"amity-social/pkg/server"
	"amity-social/pkg/snowflake"
	"amity-social/pkg/telemetry"
)

func main() {
	serviceName := "user-service"

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

	// 初始化snowflake，机器ID单节点部署固定为1
	if err := snowflake.InitGlobal(1); err != nil {
		log.Fatalf("Failed to initialize snowflake: %v", err)
	}

	// 创建应用程序
	app := server.NewApplication(serviceName, server.WithPostgres(), server.WithKafka())
	app.EnableHTTP()

	postgreSQL := app.GetPostgreSQL()

	// 自动迁移数据库表结构
	if err := postgreSQL.AutoMigrate(&model.User{}); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// 初始化DAO层
	userDAO := dao.NewUserDAO(postgreSQL)
	codeStore := dao.NewCodeStore(app.GetRedisClient())

	// 初始化Service层
	cfg := app.GetConfig()
	mailer := service.NewResendMailer(cfg.Mail.APIKey, cfg.Mail.From)
	userService := service.NewService(userDAO, codeStore, mailer, app.GetKafkaProducer(), cfg.App.JWTSecret, app.GetLogger())

	// 初始化Handler层
	otelMW := middleware.NewOTelMiddleware(serviceName, app.GetLogger())
	httpHandler := handler.NewHTTPHandler(userService, app.GetLogger())

	// 注册HTTP路由
	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		engine.Use(otelMW.GinMiddleware())
		httpHandler.RegisterRoutes(engine)
	})

	// 运行应用程序
	if err := app.Run(); err != nil {
		panic(err)
	}
}
