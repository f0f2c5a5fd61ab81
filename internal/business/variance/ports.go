package variance

import (
	"context"
	"time"
)

// UnitStatusActive 参与分析的单元状态
const UnitStatusActive = "active"

// Unit 单元目录中的可追踪库存单元
type Unit struct {
	ID              string
	OrgID           string
	Status          string
	SKU             string
	Brand           string
	Product         string
	CurrentQuantity float64
	CostPrice       *float64
	LastScanned     *time.Time
}

// Active 是否为活跃单元
func (u *Unit) Active() bool {
	return u.Status == UnitStatusActive
}

// SaleLine POS 销售行
type SaleLine struct {
	Name     string
	SKU      string
	Quantity float64
}

// Sale POS 销售记录
type Sale struct {
	Date  time.Time
	Items []SaleLine
}

// UnitCatalog 单元目录（只读）
type UnitCatalog interface {
	ListActiveUnitIDs(ctx context.Context, orgID string) ([]string, error)
	// GetUnit 单元不存在时返回 nil, nil
	GetUnit(ctx context.Context, unitID, orgID string) (*Unit, error)
	CountActiveUnitsByBrand(ctx context.Context, orgID, brand string) (int64, error)
}

// SalesFeed POS 销售数据源
type SalesFeed interface {
	GetSalesInWindow(ctx context.Context, orgID string, since time.Time) ([]Sale, error)
}

// ScanFeed RFID 扫描数据源
type ScanFeed interface {
	GetScansInWindow(ctx context.Context, unitID, orgID string, since time.Time) ([]ScanEvent, error)
}

// MetricsFeed 历史消耗指标数据源
type MetricsFeed interface {
	// GetDailyConsumptionSamples 返回 since 之后至多 limit 条样本，按日期倒序
	GetDailyConsumptionSamples(ctx context.Context, orgID string, since time.Time, limit int) ([]ConsumptionSample, error)
}

// ResultSink 检测结果落库，actorID 为空表示系统触发
type ResultSink interface {
	StoreVarianceResult(ctx context.Context, orgID string, actorID *string, result *VarianceResult) error
}

// ConfigSource 组织级检测配置来源，未配置时返回 nil, nil
type ConfigSource interface {
	GetDetectionConfig(ctx context.Context, orgID string) (*DetectionConfig, error)
}
