package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"amity-social/apps/friend-service/dao"
	"amity-social/apps/friend-service/handler"
	"amity-social/apps/friend-service/model"
	"amity-social/apps/friend-service/service"
	"amity-social/pkg/middleware"
	"amity-social/pkg/presence"
	"amity-social/pkg/server"
	"amity-social/pkg/telemetry"
)

func main() {
	serviceName := "friend-service"

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

	// 创建应用程序
	app := server.NewApplication(serviceName, server.WithPostgres(), server.WithKafka())
	app.EnableHTTP()

	postgreSQL := app.GetPostgreSQL()

	// 自动迁移数据库表结构，users表归user-service管
	if err := postgreSQL.AutoMigrate(
		&model.FriendRequest{},
		&model.Friendship{},
		&model.Block{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// 初始化DAO层
	friendDAO := dao.NewFriendDAO(postgreSQL)

	// 初始化Service层
	directory := presence.NewDirectory(app.GetRedisClient())
	notifier := service.NewPresenceNotifier(directory, app.GetRedisClient(), app.GetLogger())
	chatroom := service.NewChatroomGateway(app.GetConfig().Chat.BaseURL)
	friendService := service.NewService(friendDAO, chatroom, notifier, directory, app.GetKafkaProducer(), app.GetLogger())

	// 初始化Handler层
	otelMW := middleware.NewOTelMiddleware(serviceName, app.GetLogger())
	httpHandler := handler.NewHTTPHandler(friendService, app.GetLogger())

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
