package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"eightball/variance/internal/business"
	"eightball/variance/internal/server/handlers/varianceapi"
	"eightball/variance/internal/server/routers"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/infra/gormstore"
	"eightball/variance/pkg/lmstfy"
	"eightball/variance/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := logger.WithTraceID(context.Background(), "apiserver-main")
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. 初始化依赖
	store, err := gormstore.NewStore(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.AutoMigrate)
	if err != nil {
		zapLogger.Errorf(ctx, "Failed to create store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	engine, err := business.NewEngine(store, cfg, zapLogger)
	if err != nil {
		zapLogger.Errorf(ctx, "Failed to create engine: %v", err)
		os.Exit(1)
	}

	// lmstfy 可选，未配置时异步任务接口返回 503
	var queue varianceapi.JobQueue
	var jobQueue string
	if cfg.Lmstfy.Host != "" && len(cfg.Workers) > 0 {
		client, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
		if err != nil {
			zapLogger.Errorf(ctx, "Failed to create lmstfy client: %v", err)
			os.Exit(1)
		}
		queue = client
		jobQueue = cfg.Workers[0].QueueName
	}

	handler := varianceapi.NewVarianceHandler(engine, store, queue, jobQueue, zapLogger)

	// 3. 创建 HTTP Server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           routers.SetupRoutes(handler, zapLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. 启动 HTTP Server（后台 goroutine）
	serverErrChan := make(chan error, 1)
	go func() {
		zapLogger.Infof(ctx, "Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 5. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zapLogger.Infof(ctx, "Received signal: %v, gracefully shutting down...", sig)
	case err := <-serverErrChan:
		zapLogger.Errorf(ctx, "HTTP server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Errorf(ctx, "HTTP server shutdown error: %v", err)
	}

	zapLogger.Infof(ctx, "Application stopped")
}
