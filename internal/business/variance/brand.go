package variance

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"eightball/variance/pkg/logger"
)

const (
	trendRecentWindow   = 7 * 24 * time.Hour
	trendIncreasingRate = 0.7
	trendDecreasingRate = 0.3
)

// BrandAggregator 将单元结果按品牌+产品聚合为风险视图
type BrandAggregator struct {
	catalog UnitCatalog
	logger  logger.Logger
}

// NewBrandAggregator 创建品牌聚合器
func NewBrandAggregator(catalog UnitCatalog, log logger.Logger) *BrandAggregator {
	return &BrandAggregator{
		catalog: catalog,
		logger:  log,
	}
}

type brandKey struct {
	brand   string
	product string
}

type brandEntry struct {
	result *VarianceResult
	cost   float64
}

// Aggregate 聚合一次组织分析的全部结果，按风险分降序输出
// 无法解析所属单元的结果不参与聚合
func (b *BrandAggregator) Aggregate(ctx context.Context, orgID string, results []*VarianceResult) []*BrandVarianceResult {
	groups := make(map[brandKey][]brandEntry)
	keys := make([]brandKey, 0)

	for _, r := range results {
		if r == nil {
			continue
		}
		unit, err := b.catalog.GetUnit(ctx, r.UnitID, orgID)
		if err != nil {
			b.logger.Warnf(logger.WithUnitID(ctx, r.UnitID), "[BrandAggregator] get unit failed, skipping result: %v", err)
			continue
		}
		if unit == nil {
			b.logger.Warnf(logger.WithUnitID(ctx, r.UnitID), "[BrandAggregator] unit not found, skipping result")
			continue
		}

		key := brandKey{brand: unit.Brand, product: unit.Product}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		cost := 0.0
		if unit.CostPrice != nil {
			cost = *unit.CostPrice
		}
		groups[key] = append(groups[key], brandEntry{result: r, cost: cost})
	}

	brandTotals := make(map[string]int64)
	out := make([]*BrandVarianceResult, 0, len(keys))
	for _, key := range keys {
		total, ok := brandTotals[key.brand]
		if !ok {
			count, err := b.catalog.CountActiveUnitsByBrand(ctx, orgID, key.brand)
			if err != nil {
				b.logger.Warnf(ctx, "[BrandAggregator] count units for brand %q failed: %v", key.brand, err)
			}
			total = count
			brandTotals[key.brand] = total
		}
		out = append(out, summarize(key, groups[key], total))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RiskScore != out[j].RiskScore {
			return out[i].RiskScore > out[j].RiskScore
		}
		if out[i].Brand != out[j].Brand {
			return out[i].Brand < out[j].Brand
		}
		return out[i].Product < out[j].Product
	})

	return out
}

// summarize 计算单个品牌组的统计量
func summarize(key brandKey, entries []brandEntry, totalUnits int64) *BrandVarianceResult {
	n := len(entries)

	// 单元数统计失败或单元已下线时，以有差异的单元数兜底，保证比例不超过 1
	if totalUnits < int64(n) {
		totalUnits = int64(n)
	}

	res := &BrandVarianceResult{
		Brand:             key.brand,
		Product:           key.product,
		TotalUnits:        totalUnits,
		UnitsWithVariance: n,
		HighestSeverity:   SeverityLow,
		DetectionTypes:    make(map[DetectionType]int),
		Metadata: BrandMetadata{
			AffectedUnitIDs: make([]string, 0, n),
		},
	}

	loss := decimal.Zero
	confidenceSum := 0.0
	for i, e := range entries {
		r := e.result
		res.TotalVarianceAmount += r.VarianceAmount
		res.DetectionTypes[r.DetectionType]++
		confidenceSum += r.ConfidenceScore

		if r.Severity.Rank() > res.HighestSeverity.Rank() {
			res.HighestSeverity = r.Severity
		}
		if r.DetectedAt.After(res.LastDetectedAt) {
			res.LastDetectedAt = r.DetectedAt
		}

		loss = loss.Add(decimal.NewFromFloat(math.Abs(r.VarianceAmount)).Mul(decimal.NewFromFloat(e.cost)))

		tr := r.Metadata.TimeRange
		if i == 0 || tr.Start.Before(res.Metadata.TimeRange.Start) {
			res.Metadata.TimeRange.Start = tr.Start
		}
		if i == 0 || tr.End.After(res.Metadata.TimeRange.End) {
			res.Metadata.TimeRange.End = tr.End
		}
		res.Metadata.AffectedUnitIDs = append(res.Metadata.AffectedUnitIDs, r.UnitID)
	}
	sort.Strings(res.Metadata.AffectedUnitIDs)

	avgConfidence := confidenceSum / float64(n)
	varianceRate := float64(n) / float64(totalUnits)

	res.AverageVarianceAmount = res.TotalVarianceAmount / float64(n)
	res.EstimatedLoss = loss.Round(2)
	res.Metadata.AverageConfidence = roundTo4Decimals(avgConfidence)
	res.RiskScore = RiskScore(varianceRate, res.HighestSeverity, avgConfidence)
	res.Trend = trendOf(entries, res.Metadata.TimeRange)

	return res
}

// RiskScore 患病率、最坏严重级别、证据置信度的固定线性组合，范围 [0, 100]
func RiskScore(varianceRate float64, highest Severity, avgConfidence float64) float64 {
	score := varianceRate*40 + float64(highest.Rank())*15 + avgConfidence*45
	score = math.Max(0, math.Min(100, score))
	return roundTo2Decimals(score)
}

// trendOf 以时间范围末尾 7 天内的结果占比近似趋势
// 结果按最近证据时间归入时段，无证据时取检测时间
func trendOf(entries []brandEntry, tr TimeRange) Trend {
	if len(entries) == 0 {
		return TrendStable
	}
	recentStart := tr.End.Add(-trendRecentWindow)
	recent := 0
	for _, e := range entries {
		at := e.result.DetectedAt
		if e.result.Metadata.LastEvidenceAt != nil {
			at = *e.result.Metadata.LastEvidenceAt
		}
		if !at.Before(recentStart) {
			recent++
		}
	}

	share := float64(recent) / float64(len(entries))
	switch {
	case share >= trendIncreasingRate:
		return TrendIncreasing
	case share <= trendDecreasingRate:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// roundTo2Decimals 四舍五入到两位小数
func roundTo2Decimals(f float64) float64 {
	return math.Round(f*100) / 100
}

func roundTo4Decimals(f float64) float64 {
	return math.Round(f*10000) / 10000
}
