package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"eightball/variance/internal/business"
	"eightball/variance/internal/domains"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/infra/gormstore"
	redisx "eightball/variance/pkg/infra/redis"
	"eightball/variance/pkg/lmstfy"
	"eightball/variance/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx          context.Context
	cfg          *config.Config
	lmstfyClient *lmstfy.Client
	store        *gormstore.Store
	pubsub       *redisx.PubSub
	workers      []Worker
	closing      *atomic.Bool
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
	logger       logger.Logger
}

// NewManagerInstance 创建 Manager
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	// 1. 初始化 lmstfy 客户端
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	// 2. 初始化存储
	store, err := gormstore.NewStore(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.AutoMigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	// 3. 初始化 Redis（可选，未配置时不发布完成通知）
	var pubsub *redisx.PubSub
	if cfg.Redis.Addr != "" {
		pubsub, err = redisx.NewPubSub(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to create redis pubsub: %w", err)
		}
	} else {
		log.Warnf(ctx, "[Manager] redis.addr is empty, completion notifications disabled")
	}

	log.Infof(ctx, "[Manager] Initialized with database driver: %s", cfg.Database.Driver)

	return &ManagerInstance{
		ctx:          ctx,
		cfg:          cfg,
		lmstfyClient: lmstfyClient,
		store:        store,
		pubsub:       pubsub,
		closing:      atomic.NewBool(false),
		shutdownCh:   make(chan struct{}),
		workers:      make([]Worker, 0),
		logger:       log,
	}, nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 3. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// 原子操作，保证并发安全
	if m.closing.CAS(false, true) {
		// 1. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 2. 等待所有 Worker 退出
		m.wg.Wait()

		// 3. 释放连接
		if m.pubsub != nil {
			if err := m.pubsub.Close(); err != nil {
				m.logger.Warnf(m.ctx, "[Manager] close redis failed: %v", err)
			}
		}
		if err := m.store.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] close store failed: %v", err)
		}

		// 4. 关闭信号通道
		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 加载所有 Worker
func (m *ManagerInstance) loadWorkers() error {
	engine, err := business.NewEngine(m.store, m.cfg, m.logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	var notifier business.Notifier
	if m.pubsub != nil {
		notifier = m.pubsub
	}

	// 遍历配置中的所有 Worker
	for _, workerCfg := range m.cfg.Workers {
		// 每个 Worker 按自己的 callback 队列发送回调
		svc := business.NewVarianceService(
			engine,
			m.lmstfyClient,
			notifier,
			workerCfg.CallbackQueue,
			m.cfg.Engine.NotifyChannel,
			m.logger,
		)
		if workerCfg.CallbackQueue == "" {
			m.logger.Warnf(m.ctx, "[Manager] worker %s has no callback_queue, callbacks disabled", workerCfg.Name)
		}

		// lmstfy 客户端同时作为消息源
		worker := NewWorkerInstance(m.ctx, workerCfg, m.lmstfyClient, domains.GetProcess(m.logger, svc), m.logger)
		m.workers = append(m.workers, worker)
	}

	return nil
}
