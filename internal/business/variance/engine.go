package variance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eightball/variance/pkg/logger"
)

// Deps 引擎依赖的外部协作方
type Deps struct {
	Catalog UnitCatalog
	Sales   SalesFeed
	Scans   ScanFeed
	Metrics MetricsFeed
	Sink    ResultSink
	Configs ConfigSource
	Matcher SaleMatcher
}

// Options 引擎运行参数
type Options struct {
	BatchSize   int
	UnitTimeout time.Duration
	// Fallback 组织未配置或配置非法时使用，nil 时为 DefaultConfig()
	Fallback *DetectionConfig
	Now      func() time.Time
}

// RunOption 单次调用的可选参数
type RunOption func(*runOptions)

type runOptions struct {
	actorID *string
}

// WithActor 指定触发分析的用户，写入结果时透传
func WithActor(actorID string) RunOption {
	return func(o *runOptions) {
		if actorID != "" {
			o.actorID = &actorID
		}
	}
}

// Engine 差异检测引擎
type Engine struct {
	assembler    *Assembler
	orchestrator *Orchestrator
	aggregator   *BrandAggregator
	sink         ResultSink
	configs      ConfigSource
	fallback     DetectionConfig
	logger       logger.Logger
}

// NewEngine 创建差异检测引擎
func NewEngine(deps Deps, opts Options, log logger.Logger) (*Engine, error) {
	fallback := DefaultConfig()
	if opts.Fallback != nil {
		if err := opts.Fallback.Validate(); err != nil {
			return nil, fmt.Errorf("fallback config: %w", err)
		}
		fallback = *opts.Fallback
	}

	return &Engine{
		assembler:    NewAssembler(deps.Catalog, deps.Sales, deps.Scans, deps.Metrics, deps.Matcher, log, opts.Now),
		orchestrator: NewOrchestrator(deps.Catalog, opts.BatchSize, opts.UnitTimeout, log),
		aggregator:   NewBrandAggregator(deps.Catalog, log),
		sink:         deps.Sink,
		configs:      deps.Configs,
		fallback:     fallback,
		logger:       log,
	}, nil
}

// AnalyzeUnit 分析单个单元，无数据、差异不显著或置信度不足时返回 nil
// 受 UnitTimeout 约束
func (e *Engine) AnalyzeUnit(ctx context.Context, unitID, orgID string, opts ...RunOption) (*VarianceResult, error) {
	if err := requireID("org_id", orgID); err != nil {
		return nil, err
	}
	if err := requireID("unit_id", unitID); err != nil {
		return nil, err
	}

	ctx = logger.WithOrgID(ctx, orgID)
	run := applyRunOptions(opts)
	cfg := e.DetectionConfig(ctx, orgID)

	// 与批量路径一致：单元超时并捕获 panic
	return e.orchestrator.runUnit(ctx, unitID, func(unitCtx context.Context, unitID string) (*VarianceResult, error) {
		return e.analyzeUnit(unitCtx, unitID, orgID, cfg, run)
	})
}

// AnalyzeOrganization 分析组织内全部活跃单元，返回通过置信度门槛的结果
func (e *Engine) AnalyzeOrganization(ctx context.Context, orgID string, opts ...RunOption) ([]*VarianceResult, error) {
	if err := requireID("org_id", orgID); err != nil {
		return nil, err
	}

	ctx = logger.WithOrgID(ctx, orgID)
	run := applyRunOptions(opts)
	cfg := e.DetectionConfig(ctx, orgID)

	return e.orchestrator.Run(ctx, orgID, func(unitCtx context.Context, unitID string) (*VarianceResult, error) {
		return e.analyzeUnit(unitCtx, unitID, orgID, cfg, run)
	})
}

// AnalyzeBrandVariance 在全部单元分析结束后聚合品牌风险，按风险分降序
func (e *Engine) AnalyzeBrandVariance(ctx context.Context, orgID string, opts ...RunOption) ([]*BrandVarianceResult, error) {
	results, err := e.AnalyzeOrganization(ctx, orgID, opts...)
	if err != nil {
		return nil, err
	}
	return e.aggregator.Aggregate(logger.WithOrgID(ctx, orgID), orgID, results), nil
}

// DetectionConfig 返回组织生效的检测配置，读取失败或配置非法时回退
func (e *Engine) DetectionConfig(ctx context.Context, orgID string) DetectionConfig {
	if e.configs == nil {
		return e.fallback
	}

	cfg, err := e.configs.GetDetectionConfig(ctx, orgID)
	if err != nil {
		e.logger.Warnf(ctx, "[Engine] load detection config failed, using fallback: %v", err)
		return e.fallback
	}
	if cfg == nil {
		return e.fallback
	}
	if err := cfg.Validate(); err != nil {
		e.logger.Errorf(ctx, "[Engine] stored detection config rejected, using fallback: %v", err)
		return e.fallback
	}
	return *cfg
}

// analyzeUnit 组装快照、分析、按门槛落库
func (e *Engine) analyzeUnit(ctx context.Context, unitID, orgID string, cfg DetectionConfig, run runOptions) (*VarianceResult, error) {
	snapshot := e.assembler.Assemble(ctx, unitID, orgID, cfg)

	// 超时与取消等同于取数失败，该单元无结果
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble unit %s: %w", unitID, err)
	}
	if snapshot == nil {
		return nil, nil
	}

	result := NewAnalyzer(cfg).Analyze(snapshot)
	if result == nil {
		return nil, nil
	}
	if result.ConfidenceScore < AcceptanceConfidence {
		e.logger.Debugf(ctx, "[Engine] result below acceptance confidence: %.4f", result.ConfidenceScore)
		return nil, nil
	}

	if e.sink != nil {
		if err := e.sink.StoreVarianceResult(ctx, orgID, run.actorID, result); err != nil {
			// 落库失败不影响检测结果
			e.logger.Errorf(ctx, "[Engine] store variance result failed: %v", err)
		}
	}

	e.logger.Infof(ctx, "[Engine] Variance detected: type=%s, severity=%s, amount=%.2f, confidence=%.4f",
		result.DetectionType, result.Severity, result.VarianceAmount, result.ConfidenceScore)

	return result, nil
}

func applyRunOptions(opts []RunOption) runOptions {
	var run runOptions
	for _, opt := range opts {
		opt(&run)
	}
	return run
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	return nil
}
