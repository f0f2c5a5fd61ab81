package variance

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	factorNoPosSales    = "no POS sales recorded for missing inventory"
	factorNoRfidScans   = "no recent RFID scans"
	factorHighVariance  = "high variance percentage"
	highVarianceFactor  = 0.5
	minExpectedQuantity = 0.1
)

// Analyzer 单元差异分析器（纯计算，不访问数据源）
type Analyzer struct {
	cfg   DetectionConfig
	newID func() string
}

// NewAnalyzer 创建分析器
func NewAnalyzer(cfg DetectionConfig) *Analyzer {
	return &Analyzer{
		cfg:   cfg,
		newID: uuid.NewString,
	}
}

// Analyze 对快照执行差异分析
// 差异不显著或销售数量低于分析下限时返回 nil；置信度是否达标由调用方判断
func (a *Analyzer) Analyze(s *ConsumptionSnapshot) *VarianceResult {
	if s == nil {
		return nil
	}
	if len(s.Sales) < a.cfg.MinimumSalesForAnalysis {
		return nil
	}

	// 1. POS 销售合计
	totalPosSales := 0.0
	for _, sale := range s.Sales {
		totalPosSales += sale.Quantity
	}

	// 2. 简化消耗模型：POS 销售是唯一的合法出库
	expected := math.Max(0, s.CurrentQuantity-totalPosSales)
	actual := observedQuantity(s)

	// 3. 显著性过滤
	varianceAmount := math.Abs(expected - actual)
	if varianceAmount < MaterialityFloor {
		return nil
	}

	// 4. 差异比例，期望值过小时取下限
	variancePct := varianceAmount / math.Max(expected, minExpectedQuantity)

	// 5. 严重级别
	severity := a.cfg.SeverityFor(variancePct)

	// 6. 差异类型
	detectionType := classify(expected, actual, totalPosSales)

	metadata := ResultMetadata{
		TimeRange:           s.TimeRange,
		ContributingFactors: make([]string, 0),
		LastEvidenceAt:      lastEvidence(s),
	}

	if len(s.History) > 0 {
		historicalAvg := averageConsumption(s.History)
		metadata.HistoricalAverage = &historicalAvg

		if a.cfg.EnableAnomalyDetection {
			current := a.currentConsumption(totalPosSales)
			anomalyScore := math.Abs(current-historicalAvg) / math.Max(historicalAvg, 1)
			metadata.AnomalyScore = &anomalyScore

			// 异常一旦触发优先于符号分类
			if anomalyScore > a.cfg.AnomalySensitivity {
				detectionType = DetectionConsumptionAnomaly
			}
		}
	}

	// 7. 置信度
	confidence := ConfidenceScore(s, a.cfg.Weights)

	// 8. 辅助调查的影响因素，不参与评分
	if totalPosSales == 0 {
		metadata.ContributingFactors = append(metadata.ContributingFactors, factorNoPosSales)
	}
	if len(s.Scans) == 0 {
		metadata.ContributingFactors = append(metadata.ContributingFactors, factorNoRfidScans)
	}
	if variancePct > highVarianceFactor {
		metadata.ContributingFactors = append(metadata.ContributingFactors, factorHighVariance)
	}

	return &VarianceResult{
		ID:               a.newID(),
		UnitID:           s.UnitID,
		DetectionType:    detectionType,
		Severity:         severity,
		ExpectedQuantity: expected,
		ActualQuantity:   actual,
		VarianceAmount:   varianceAmount,
		PosSalesCount:    len(s.Sales),
		RfidScansCount:   len(s.Scans),
		ConfidenceScore:  confidence,
		DetectedAt:       s.AnalyzedAt,
		Metadata:         metadata,
	}
}

// currentConsumption 将窗口内销售折算为日消耗，便于与历史日均比较
func (a *Analyzer) currentConsumption(totalPosSales float64) float64 {
	if a.cfg.AnalysisWindowHours <= 0 {
		return totalPosSales
	}
	return totalPosSales * 24 / float64(a.cfg.AnalysisWindowHours)
}

// classify 按 actual-expected 的符号分类
func classify(expected, actual, totalPosSales float64) DetectionType {
	switch {
	case actual < expected:
		if totalPosSales > 0 {
			return DetectionTheftSuspected
		}
		return DetectionMissing
	case actual > expected:
		return DetectionSurplus
	default:
		return DetectionReconciliationNeeded
	}
}

// observedQuantity 取最近一次带数量的 RFID 观测，没有时退回单元当前数量
func observedQuantity(s *ConsumptionSnapshot) float64 {
	var latest *ScanEvent
	for i := range s.Scans {
		scan := &s.Scans[i]
		if scan.Quantity == nil {
			continue
		}
		if latest == nil || scan.Timestamp.After(latest.Timestamp) {
			latest = scan
		}
	}
	if latest == nil {
		return s.CurrentQuantity
	}
	return *latest.Quantity
}

func averageConsumption(samples []ConsumptionSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, sample := range samples {
		sum += sample.AvgConsumption
	}
	return sum / float64(len(samples))
}

// lastEvidence 快照中最近一条销售或扫描的时间
func lastEvidence(s *ConsumptionSnapshot) *time.Time {
	var latest time.Time
	for _, sale := range s.Sales {
		if sale.Date.After(latest) {
			latest = sale.Date
		}
	}
	for _, scan := range s.Scans {
		if scan.Timestamp.After(latest) {
			latest = scan.Timestamp
		}
	}
	if latest.IsZero() {
		return nil
	}
	return &latest
}
