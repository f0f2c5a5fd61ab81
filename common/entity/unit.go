package entity

import "time"

// Unit 可追踪库存单元
type Unit struct {
	ID              string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrgID           string     `gorm:"column:org_id;type:varchar(64);not null;index:idx_org_status;index:idx_org_brand"`
	SKU             string     `gorm:"column:sku;type:varchar(128)"`
	Brand           string     `gorm:"column:brand;type:varchar(255);index:idx_org_brand"`
	Product         string     `gorm:"column:product;type:varchar(255)"`
	Status          string     `gorm:"column:status;type:varchar(16);not null;default:'active';index:idx_org_status"`
	CurrentQuantity float64    `gorm:"column:current_quantity;not null;default:0"`
	CostPrice       *float64   `gorm:"column:cost_price"`
	LastScanned     *time.Time `gorm:"column:last_scanned"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Unit) TableName() string {
	return "units"
}

// 单元状态常量
const (
	UnitStatusActive   = "active"
	UnitStatusInactive = "inactive"
)
