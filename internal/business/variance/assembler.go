package variance

import (
	"context"
	"time"

	"eightball/variance/pkg/logger"
)

// Assembler 为单个单元收集 POS、RFID 与历史消耗数据
type Assembler struct {
	catalog UnitCatalog
	sales   SalesFeed
	scans   ScanFeed
	metrics MetricsFeed
	matcher SaleMatcher
	logger  logger.Logger
	now     func() time.Time
}

// NewAssembler 创建数据组装器，matcher 为 nil 时使用子串匹配
func NewAssembler(
	catalog UnitCatalog,
	sales SalesFeed,
	scans ScanFeed,
	metrics MetricsFeed,
	matcher SaleMatcher,
	log logger.Logger,
	now func() time.Time,
) *Assembler {
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	if now == nil {
		now = time.Now
	}
	return &Assembler{
		catalog: catalog,
		sales:   sales,
		scans:   scans,
		metrics: metrics,
		matcher: matcher,
		logger:  log,
		now:     now,
	}
}

// Assemble 构建消耗快照
// 单元不存在、非活跃或目录不可用时返回 nil（无数据），不向调用方报错；
// 销售、扫描、历史任一数据源失败时按空数据继续
func (a *Assembler) Assemble(ctx context.Context, unitID, orgID string, cfg DetectionConfig) *ConsumptionSnapshot {
	unit, err := a.catalog.GetUnit(ctx, unitID, orgID)
	if err != nil {
		a.logger.Warnf(ctx, "[Assembler] get unit failed, skipping: %v", err)
		return nil
	}
	if unit == nil {
		a.logger.Debugf(ctx, "[Assembler] unit not found")
		return nil
	}
	if !unit.Active() {
		a.logger.Debugf(ctx, "[Assembler] unit not active: status=%s", unit.Status)
		return nil
	}

	now := a.now()
	cutoff := now.Add(-time.Duration(cfg.AnalysisWindowHours) * time.Hour)

	snapshot := &ConsumptionSnapshot{
		UnitID:          unit.ID,
		CurrentQuantity: unit.CurrentQuantity,
		Sales:           make([]SaleEvent, 0),
		Scans:           make([]ScanEvent, 0),
		History:         make([]ConsumptionSample, 0),
		TimeRange:       TimeRange{Start: cutoff, End: now},
		AnalyzedAt:      now,
	}

	// 1. POS 销售归属
	sales, err := a.sales.GetSalesInWindow(ctx, orgID, cutoff)
	if err != nil {
		a.logger.Warnf(ctx, "[Assembler] sales feed failed, continuing without sales: %v", err)
	}
	for _, sale := range sales {
		if sale.Date.Before(cutoff) {
			continue
		}
		for _, line := range sale.Items {
			if a.matcher.Match(unit, line) {
				snapshot.Sales = append(snapshot.Sales, SaleEvent{
					Date:     sale.Date,
					Quantity: line.Quantity,
					ItemName: line.Name,
				})
			}
		}
	}

	// 2. RFID 扫描
	scans, err := a.scans.GetScansInWindow(ctx, unit.ID, orgID, cutoff)
	if err != nil {
		a.logger.Warnf(ctx, "[Assembler] scan feed failed, continuing without scans: %v", err)
	} else {
		snapshot.Scans = append(snapshot.Scans, scans...)
	}

	// 3. 历史消耗（与分析窗口无关，只取最近 HistoryDays 天）
	historySince := now.AddDate(0, 0, -HistoryDays)
	history, err := a.metrics.GetDailyConsumptionSamples(ctx, orgID, historySince, HistoryDays)
	if err != nil {
		a.logger.Warnf(ctx, "[Assembler] metrics feed failed, continuing without history: %v", err)
	}
	for _, sample := range history {
		if len(snapshot.History) == HistoryDays {
			break
		}
		if sample.Date.Before(historySince) {
			continue
		}
		snapshot.History = append(snapshot.History, sample)
	}

	return snapshot
}
