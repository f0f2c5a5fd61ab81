package gormstore

import (
	"context"
	"fmt"
	"time"

	"eightball/variance/common/entity"
	"eightball/variance/internal/business/variance"
)

// GetSalesInWindow 获取 since 之后的 POS 销售（含销售行）
func (s *Store) GetSalesInWindow(ctx context.Context, orgID string, since time.Time) ([]variance.Sale, error) {
	var rows []entity.PosSale
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND sale_date >= ?", orgID, since).
		Order("sale_date").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query pos sales: %w", err)
	}

	sales := make([]variance.Sale, 0, len(rows))
	for _, row := range rows {
		sale := variance.Sale{
			Date:  row.SaleDate,
			Items: make([]variance.SaleLine, 0, len(row.Items)),
		}
		for _, item := range row.Items {
			sale.Items = append(sale.Items, variance.SaleLine{
				Name:     item.Name,
				SKU:      item.SKU,
				Quantity: item.Quantity,
			})
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// GetScansInWindow 获取单元 since 之后的 RFID 扫描
func (s *Store) GetScansInWindow(ctx context.Context, unitID, orgID string, since time.Time) ([]variance.ScanEvent, error) {
	var rows []entity.RfidScan
	err := s.db.WithContext(ctx).
		Where("unit_id = ? AND org_id = ? AND scanned_at >= ?", unitID, orgID, since).
		Order("scanned_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query rfid scans: %w", err)
	}

	scans := make([]variance.ScanEvent, 0, len(rows))
	for _, row := range rows {
		scans = append(scans, variance.ScanEvent{
			Timestamp: row.ScannedAt,
			Quantity:  row.Quantity,
		})
	}
	return scans, nil
}

// GetDailyConsumptionSamples 获取 since 之后的日消耗样本，至多 limit 条，按日期倒序
func (s *Store) GetDailyConsumptionSamples(ctx context.Context, orgID string, since time.Time, limit int) ([]variance.ConsumptionSample, error) {
	var rows []entity.ConsumptionMetric
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND metric_date >= ?", orgID, since).
		Order("metric_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query consumption metrics: %w", err)
	}

	samples := make([]variance.ConsumptionSample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, variance.ConsumptionSample{
			Date:           row.MetricDate,
			AvgConsumption: row.AvgConsumption,
		})
	}
	return samples, nil
}
