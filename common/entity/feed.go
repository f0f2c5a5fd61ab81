package entity

import "time"

// PosSale POS 销售单
type PosSale struct {
	ID       string        `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrgID    string        `gorm:"column:org_id;type:varchar(64);not null;index:idx_org_date"`
	SaleDate time.Time     `gorm:"column:sale_date;not null;index:idx_org_date"`
	Items    []PosSaleItem `gorm:"foreignKey:SaleID"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (PosSale) TableName() string {
	return "pos_sales"
}

// PosSaleItem POS 销售行，Name 为菜单上的自由文本
type PosSaleItem struct {
	ID       int64   `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID   string  `gorm:"column:sale_id;type:varchar(64);not null;index:idx_sale"`
	Name     string  `gorm:"column:name;type:varchar(255);not null"`
	SKU      string  `gorm:"column:sku;type:varchar(128)"`
	Quantity float64 `gorm:"column:quantity;not null"`
}

// TableName 指定表名
func (PosSaleItem) TableName() string {
	return "pos_sale_items"
}

// RfidScan RFID 扫描记录，Quantity 为读到的在库数量（可选）
type RfidScan struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UnitID    string    `gorm:"column:unit_id;type:varchar(64);not null;index:idx_unit_scanned"`
	OrgID     string    `gorm:"column:org_id;type:varchar(64);not null"`
	ScannedAt time.Time `gorm:"column:scanned_at;not null;index:idx_unit_scanned"`
	Quantity  *float64  `gorm:"column:quantity"`
}

// TableName 指定表名
func (RfidScan) TableName() string {
	return "rfid_scans"
}

// ConsumptionMetric 组织级日消耗指标
type ConsumptionMetric struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrgID          string    `gorm:"column:org_id;type:varchar(64);not null;uniqueIndex:uk_org_date"`
	MetricDate     time.Time `gorm:"column:metric_date;not null;uniqueIndex:uk_org_date"`
	AvgConsumption float64   `gorm:"column:avg_consumption;not null"`
}

// TableName 指定表名
func (ConsumptionMetric) TableName() string {
	return "consumption_metrics"
}
