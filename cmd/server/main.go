// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ShuyangenFrance/AI-kid/internal/config"
	"github.com/ShuyangenFrance/AI-kid/internal/handler"
	"github.com/ShuyangenFrance/AI-kid/internal/middleware"
	"github.com/ShuyangenFrance/AI-kid/internal/pipeline"
	"github.com/ShuyangenFrance/AI-kid/internal/repository"
	"github.com/ShuyangenFrance/AI-kid/internal/service"
	"github.com/ShuyangenFrance/AI-kid/internal/timezone"
	"github.com/ShuyangenFrance/AI-kid/pkg/database"
	"github.com/ShuyangenFrance/AI-kid/pkg/es"
	"github.com/ShuyangenFrance/AI-kid/pkg/kafka"
	"github.com/ShuyangenFrance/AI-kid/pkg/llm"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
	"github.com/ShuyangenFrance/AI-kid/pkg/storage"
	"github.com/ShuyangenFrance/AI-kid/pkg/tika"
	"github.com/ShuyangenFrance/AI-kid/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储、ES 和 Kafka
	db, err := database.NewMySQL(cfg.Database.MySQL.DSN)
	if err != nil {
		log.Fatalf("MySQL 初始化失败: %s", err)
	}
	rdb, err := database.NewRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err != nil {
		log.Fatalf("Redis 初始化失败: %s", err)
	}
	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("MinIO 初始化失败: %s", err)
	}
	esClient, err := es.NewClient(cfg.Elasticsearch)
	if err != nil {
		log.Fatalf("Elasticsearch 初始化失败: %s", err)
	}
	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close()

	// 4. 初始化 Repository
	userRepository := repository.NewUserRepository(db)
	chatRepository := repository.NewChatRepository(db, rdb)
	conversationRepo := repository.NewConversationRepository(db)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	tikaClient := tika.NewClient(cfg.Tika)
	llmClient := llm.NewClient(cfg.LLM)

	var resolver timezone.Resolver
	switch cfg.Timezone.Resolver {
	case "geocode":
		resolver = timezone.NewGeocodeResolver(cfg.Timezone)
	default:
		resolver = timezone.NewTableResolver()
	}

	userService := service.NewUserService(userRepository, chatRepository, jwtManager, rdb, storageClient, tikaClient)
	chatService := service.NewChatService(chatRepository, userRepository, llmClient, resolver, producer, cfg.Chat.GoodnightReplies, nil)
	reportService := service.NewReportService(userRepository, chatRepository, llmClient)
	conversationService := service.NewConversationService(chatRepository)
	searchService := service.NewSearchService(userRepository, esClient)

	// 6. 启动后台 Kafka 消费者，异步归档已完成的对话回合
	archiver := pipeline.NewArchiver(conversationRepo, esClient)
	go kafka.StartConsumer(cfg.Kafka, archiver, rdb)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", handler.NewUserHandler(userService).Register)
			users.POST("/login", handler.NewUserHandler(userService).Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService, rdb))
			{
				authed.GET("/me", handler.NewUserHandler(userService).GetProfile)
				authed.POST("/logout", handler.NewUserHandler(userService).Logout)
				authed.GET("/conversation", handler.NewConversationHandler(conversationService).GetConversations)
			}
		}

		// Profile 路由组：子女档案维护，需要认证
		profile := apiV1.Group("/profile")
		profile.Use(middleware.AuthMiddleware(jwtManager, userService, rdb))
		{
			profile.PUT("", handler.NewProfileHandler(userService).SaveProfile)
			profile.POST("/chatlog", handler.NewProfileHandler(userService).UploadChatLog)
			profile.GET("/cities", handler.NewProfileHandler(userService).GetCityOptions)
		}

		// WebSocket 聊天入口，token 经路径参数传入
		apiV1.GET("/chat/:token", handler.NewChatHandler(chatService, userService, jwtManager).Handle)

		// 子女侧：周报与对话检索，凭妈妈的名字访问
		apiV1.GET("/report", handler.NewReportHandler(reportService).Handle)
		apiV1.GET("/report/search", handler.NewSearchHandler(searchService).SearchTurns)
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
