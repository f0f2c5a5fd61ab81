package variance

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"eightball/variance/pkg/logger"
)

const (
	DefaultBatchSize   = 10
	DefaultUnitTimeout = 5 * time.Second
)

// UnitFunc 分析单个单元，nil 结果表示无结果
type UnitFunc func(ctx context.Context, unitID string) (*VarianceResult, error)

// Orchestrator 按批次驱动组织内全部活跃单元的分析
// 批内并发，批间串行，避免对数据源无界扇出
type Orchestrator struct {
	catalog     UnitCatalog
	batchSize   int
	unitTimeout time.Duration
	logger      logger.Logger
}

// NewOrchestrator 创建批次编排器
func NewOrchestrator(catalog UnitCatalog, batchSize int, unitTimeout time.Duration, log logger.Logger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if unitTimeout <= 0 {
		unitTimeout = DefaultUnitTimeout
	}
	return &Orchestrator{
		catalog:     catalog,
		batchSize:   batchSize,
		unitTimeout: unitTimeout,
		logger:      log,
	}
}

// Run 执行组织级分析
// 单元失败、超时或 panic 只记录日志并视为无结果；单元列表不可用时返回空结果
func (o *Orchestrator) Run(ctx context.Context, orgID string, analyze UnitFunc) ([]*VarianceResult, error) {
	unitIDs, err := o.catalog.ListActiveUnitIDs(ctx, orgID)
	if err != nil {
		o.logger.Errorf(ctx, "[Orchestrator] list active units failed: %v", err)
		return []*VarianceResult{}, nil
	}

	batches := partition(unitIDs, o.batchSize)
	o.logger.Infof(ctx, "[Orchestrator] Analyzing %d units in %d batches", len(unitIDs), len(batches))

	results := make([]*VarianceResult, 0)
	failed := 0
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			o.logger.Warnf(ctx, "[Orchestrator] Run cancelled before batch %d: %v", i, err)
			return results, err
		}

		// 每个成员写入自己的槽位，批结束后统一收集
		slots := make([]*VarianceResult, len(batch))
		errs := make([]error, len(batch))

		var g errgroup.Group
		for j, unitID := range batch {
			g.Go(func() error {
				slots[j], errs[j] = o.runUnit(ctx, unitID, analyze)
				return nil
			})
		}
		_ = g.Wait() // 错误记录在 errs 中

		for j, r := range slots {
			if errs[j] != nil {
				failed++
				o.logger.Warnf(logger.WithUnitID(ctx, batch[j]), "[Orchestrator] unit analysis failed: %v", errs[j])
				continue
			}
			if r != nil {
				results = append(results, r)
			}
		}
	}

	o.logger.Infof(ctx, "[Orchestrator] Run complete: units=%d, results=%d, failed=%d",
		len(unitIDs), len(results), failed)

	return results, nil
}

// runUnit 在单元超时内执行分析并捕获 panic
func (o *Orchestrator) runUnit(ctx context.Context, unitID string, analyze UnitFunc) (result *VarianceResult, err error) {
	unitCtx, cancel := context.WithTimeout(logger.WithUnitID(ctx, unitID), o.unitTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("unit analysis panic: %v", r)
		}
	}()

	return analyze(unitCtx, unitID)
}

// partition 按固定大小切分
func partition(ids []string, size int) [][]string {
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
