package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eightball/variance/common/entity"
	"eightball/variance/internal/business/variance"
)

// GetDetectionConfig 读取组织检测配置，未配置时返回 nil, nil
// 存储中缺失的字段取默认值，校验交给调用方
func (s *Store) GetDetectionConfig(ctx context.Context, orgID string) (*variance.DetectionConfig, error) {
	var row entity.DetectionSetting
	err := s.db.WithContext(ctx).Where("org_id = ?", orgID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get detection setting: %w", err)
	}

	cfg := variance.DefaultConfig()
	if err := json.Unmarshal(row.Config, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", variance.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// SaveDetectionConfig 写入组织检测配置，写入前校验
func (s *Store) SaveDetectionConfig(ctx context.Context, orgID string, cfg variance.DetectionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal detection config: %w", err)
	}

	row := &entity.DetectionSetting{
		OrgID:     orgID,
		Config:    raw,
		UpdatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save detection setting: %w", err)
	}
	return nil
}
