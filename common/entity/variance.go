package entity

import (
	"time"

	"gorm.io/datatypes"
)

// VarianceResult 差异检测结果
type VarianceResult struct {
	// 基础字段
	ID     string `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrgID  string `gorm:"column:org_id;type:varchar(64);not null;index:idx_org_detected"`
	UnitID string `gorm:"column:unit_id;type:varchar(64);not null;index:idx_unit"`

	// 检测结论
	DetectionType    string  `gorm:"column:detection_type;type:varchar(32);not null"`
	Severity         string  `gorm:"column:severity;type:varchar(16);not null"`
	ExpectedQuantity float64 `gorm:"column:expected_quantity;not null"`
	ActualQuantity   float64 `gorm:"column:actual_quantity;not null"`
	VarianceAmount   float64 `gorm:"column:variance_amount;not null"`
	PosSalesCount    int     `gorm:"column:pos_sales_count;not null"`
	RfidScansCount   int     `gorm:"column:rfid_scans_count;not null"`
	ConfidenceScore  float64 `gorm:"column:confidence_score;not null"`

	// 时间范围、历史均值、异常分与影响因素
	Metadata datatypes.JSON `gorm:"column:metadata;type:json"`

	// ActorID 为空表示系统触发
	ActorID *string `gorm:"column:actor_id;type:varchar(64)"`

	// 时间戳
	DetectedAt time.Time `gorm:"column:detected_at;not null;index:idx_org_detected"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (VarianceResult) TableName() string {
	return "variance_results"
}

// DetectionSetting 组织级检测配置
type DetectionSetting struct {
	OrgID     string         `gorm:"column:org_id;primaryKey;type:varchar(64)"`
	Config    datatypes.JSON `gorm:"column:config;type:json;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (DetectionSetting) TableName() string {
	return "detection_settings"
}

// All 返回需要迁移的全部实体
func All() []interface{} {
	return []interface{}{
		&Unit{},
		&PosSale{},
		&PosSaleItem{},
		&RfidScan{},
		&ConsumptionMetric{},
		&VarianceResult{},
		&DetectionSetting{},
	}
}
