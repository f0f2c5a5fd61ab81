package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"eightball/variance/common/entity"
	"eightball/variance/internal/business/variance"
)

// ListActiveUnitIDs 获取组织内全部活跃单元 ID
func (s *Store) ListActiveUnitIDs(ctx context.Context, orgID string) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.WithContext(ctx).
		Model(&entity.Unit{}).
		Where("org_id = ? AND status = ?", orgID, entity.UnitStatusActive).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active units: %w", err)
	}
	return ids, nil
}

// GetUnit 根据 ID 获取单元，不存在时返回 nil, nil
func (s *Store) GetUnit(ctx context.Context, unitID, orgID string) (*variance.Unit, error) {
	var unit entity.Unit
	err := s.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", unitID, orgID).
		First(&unit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return toUnit(&unit), nil
}

// CountActiveUnitsByBrand 统计组织内某品牌的活跃单元数
func (s *Store) CountActiveUnitsByBrand(ctx context.Context, orgID, brand string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.Unit{}).
		Where("org_id = ? AND brand = ? AND status = ?", orgID, brand, entity.UnitStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count units: %w", err)
	}
	return count, nil
}

// SaveUnit 新增或更新单元
func (s *Store) SaveUnit(ctx context.Context, unit *entity.Unit) error {
	if err := s.db.WithContext(ctx).Save(unit).Error; err != nil {
		return fmt.Errorf("failed to save unit: %w", err)
	}
	return nil
}

func toUnit(e *entity.Unit) *variance.Unit {
	return &variance.Unit{
		ID:              e.ID,
		OrgID:           e.OrgID,
		Status:          e.Status,
		SKU:             e.SKU,
		Brand:           e.Brand,
		Product:         e.Product,
		CurrentQuantity: e.CurrentQuantity,
		CostPrice:       e.CostPrice,
		LastScanned:     e.LastScanned,
	}
}
