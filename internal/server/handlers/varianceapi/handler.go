package varianceapi

import (
	"context"

	"eightball/variance/internal/business/variance"
	"eightball/variance/pkg/logger"
)

// Engine 差异检测引擎（*variance.Engine 实现）
type Engine interface {
	AnalyzeUnit(ctx context.Context, unitID, orgID string, opts ...variance.RunOption) (*variance.VarianceResult, error)
	AnalyzeOrganization(ctx context.Context, orgID string, opts ...variance.RunOption) ([]*variance.VarianceResult, error)
	AnalyzeBrandVariance(ctx context.Context, orgID string, opts ...variance.RunOption) ([]*variance.BrandVarianceResult, error)
	DetectionConfig(ctx context.Context, orgID string) variance.DetectionConfig
}

// Store 结果与配置存储（*gormstore.Store 实现）
type Store interface {
	GetVarianceResult(ctx context.Context, orgID, id string) (*variance.VarianceResult, *string, error)
	ListVarianceResults(ctx context.Context, orgID string, limit int) ([]*variance.VarianceResult, error)
	SaveDetectionConfig(ctx context.Context, orgID string, cfg variance.DetectionConfig) error
}

// JobQueue 异步任务队列（*lmstfy.Client 实现）
type JobQueue interface {
	PublishJSON(queue string, v interface{}) (string, error)
}

// VarianceHandler 差异分析 HTTP 处理器
type VarianceHandler struct {
	engine   Engine
	store    Store
	queue    JobQueue
	jobQueue string
	logger   logger.Logger
}

// NewVarianceHandler 创建处理器，queue 为 nil 时不支持异步任务
func NewVarianceHandler(engine Engine, store Store, queue JobQueue, jobQueue string, log logger.Logger) *VarianceHandler {
	return &VarianceHandler{
		engine:   engine,
		store:    store,
		queue:    queue,
		jobQueue: jobQueue,
		logger:   log,
	}
}
