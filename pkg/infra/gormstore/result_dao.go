package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"eightball/variance/common/entity"
	"eightball/variance/internal/business/variance"
)

// StoreVarianceResult 写入检测结果
// 参数：
//   - orgID: 组织 ID
//   - actorID: 触发分析的用户，nil 表示系统触发
//   - result: 检测结果
func (s *Store) StoreVarianceResult(ctx context.Context, orgID string, actorID *string, result *variance.VarianceResult) error {
	// 序列化元数据为 JSON
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal variance metadata: %w", err)
	}

	row := &entity.VarianceResult{
		ID:               result.ID,
		OrgID:            orgID,
		UnitID:           result.UnitID,
		DetectionType:    string(result.DetectionType),
		Severity:         string(result.Severity),
		ExpectedQuantity: result.ExpectedQuantity,
		ActualQuantity:   result.ActualQuantity,
		VarianceAmount:   result.VarianceAmount,
		PosSalesCount:    result.PosSalesCount,
		RfidScansCount:   result.RfidScansCount,
		ConfidenceScore:  result.ConfidenceScore,
		Metadata:         metadata,
		ActorID:          actorID,
		DetectedAt:       result.DetectedAt,
		CreatedAt:        time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert variance result: %w", err)
	}
	return nil
}

// GetVarianceResult 根据 ID 获取检测结果及其触发人
func (s *Store) GetVarianceResult(ctx context.Context, orgID, id string) (*variance.VarianceResult, *string, error) {
	var row entity.VarianceResult
	err := s.db.WithContext(ctx).Where("id = ? AND org_id = ?", id, orgID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("variance result %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get variance result: %w", err)
	}

	result, err := toVarianceResult(&row)
	if err != nil {
		return nil, nil, err
	}
	return result, row.ActorID, nil
}

// ListVarianceResults 获取组织最近的检测结果，按检测时间倒序
func (s *Store) ListVarianceResults(ctx context.Context, orgID string, limit int) ([]*variance.VarianceResult, error) {
	var rows []entity.VarianceResult
	err := s.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("detected_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list variance results: %w", err)
	}

	results := make([]*variance.VarianceResult, 0, len(rows))
	for i := range rows {
		r, err := toVarianceResult(&rows[i])
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func toVarianceResult(row *entity.VarianceResult) (*variance.VarianceResult, error) {
	result := &variance.VarianceResult{
		ID:               row.ID,
		UnitID:           row.UnitID,
		DetectionType:    variance.DetectionType(row.DetectionType),
		Severity:         variance.Severity(row.Severity),
		ExpectedQuantity: row.ExpectedQuantity,
		ActualQuantity:   row.ActualQuantity,
		VarianceAmount:   row.VarianceAmount,
		PosSalesCount:    row.PosSalesCount,
		RfidScansCount:   row.RfidScansCount,
		ConfidenceScore:  row.ConfidenceScore,
		DetectedAt:       row.DetectedAt,
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &result.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variance metadata: %w", err)
		}
	}
	return result, nil
}
