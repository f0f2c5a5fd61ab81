package variance

import (
	"time"

	"github.com/shopspring/decimal"
)

// DetectionType 差异类型
type DetectionType string

const (
	DetectionMissing              DetectionType = "missing"
	DetectionSurplus              DetectionType = "surplus"
	DetectionConsumptionAnomaly   DetectionType = "consumption_anomaly"
	DetectionTheftSuspected       DetectionType = "theft_suspected"
	DetectionReconciliationNeeded DetectionType = "reconciliation_needed"
)

// Severity 严重级别
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank 返回严重级别的序数（low=1 ... critical=4，未知为 0）
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Trend 品牌趋势
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDecreasing Trend = "decreasing"
)

// TimeRange 分析时间范围
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SaleEvent 归属到单元的 POS 销售
type SaleEvent struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
	ItemName string    `json:"item_name"`
}

// ScanEvent RFID 扫描事件
type ScanEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Quantity  *float64  `json:"quantity,omitempty"`
}

// ConsumptionSample 历史日均消耗样本
type ConsumptionSample struct {
	Date           time.Time `json:"date"`
	AvgConsumption float64   `json:"avg_consumption"`
}

// ConsumptionSnapshot 单次分析的消耗数据快照，每次分析重新构建
type ConsumptionSnapshot struct {
	UnitID          string
	CurrentQuantity float64
	Sales           []SaleEvent
	Scans           []ScanEvent
	History         []ConsumptionSample
	TimeRange       TimeRange
	// AnalyzedAt 快照构建时刻，RFID 新鲜度以此为准
	AnalyzedAt time.Time
}

// ResultMetadata 单元差异结果的附加信息
type ResultMetadata struct {
	TimeRange           TimeRange `json:"time_range"`
	HistoricalAverage   *float64  `json:"historical_average,omitempty"`
	AnomalyScore        *float64  `json:"anomaly_score,omitempty"`
	ContributingFactors []string  `json:"contributing_factors"`
	// LastEvidenceAt 最近一条归属销售或扫描的时间，无证据时为 nil
	LastEvidenceAt *time.Time `json:"last_evidence_at,omitempty"`
}

// VarianceResult 单元差异检测结果，创建后不可修改
type VarianceResult struct {
	ID               string         `json:"id"`
	UnitID           string         `json:"unit_id"`
	DetectionType    DetectionType  `json:"detection_type"`
	Severity         Severity       `json:"severity"`
	ExpectedQuantity float64        `json:"expected_quantity"`
	ActualQuantity   float64        `json:"actual_quantity"`
	VarianceAmount   float64        `json:"variance_amount"`
	PosSalesCount    int            `json:"pos_sales_count"`
	RfidScansCount   int            `json:"rfid_scans_count"`
	ConfidenceScore  float64        `json:"confidence_score"`
	DetectedAt       time.Time      `json:"detected_at"`
	Metadata         ResultMetadata `json:"metadata"`
}

// BrandMetadata 品牌聚合的附加信息
type BrandMetadata struct {
	TimeRange         TimeRange `json:"time_range"`
	AffectedUnitIDs   []string  `json:"affected_unit_ids"`
	AverageConfidence float64   `json:"average_confidence"`
}

// BrandVarianceResult 品牌+产品维度的差异聚合视图
type BrandVarianceResult struct {
	Brand                 string                `json:"brand"`
	Product               string                `json:"product"`
	TotalUnits            int64                 `json:"total_units"`
	UnitsWithVariance     int                   `json:"units_with_variance"`
	TotalVarianceAmount   float64               `json:"total_variance_amount"`
	AverageVarianceAmount float64               `json:"average_variance_amount"`
	HighestSeverity       Severity              `json:"highest_severity"`
	DetectionTypes        map[DetectionType]int `json:"detection_types"`
	EstimatedLoss         decimal.Decimal       `json:"estimated_loss"`
	RiskScore             float64               `json:"risk_score"`
	Trend                 Trend                 `json:"trend"`
	LastDetectedAt        time.Time             `json:"last_detected_at"`
	Metadata              BrandMetadata         `json:"metadata"`
}
