package variance

import (
	"context"
	"encoding/json"

	"eightball/variance/internal/domains/common"
	"eightball/variance/internal/domains/common/job"
)

// NewOrgHandler 组织批量分析 Handler
func NewOrgHandler(ctx context.Context, svc common.VarianceExecutor, meta *job.Meta, payload json.RawMessage) (common.HandlerServ, error) {
	data, err := decodeBusinessData(payload)
	if err != nil {
		return nil, err
	}
	// 组织级分析忽略 unit_id
	data.UnitID = ""
	return newHandler(ctx, svc, meta, data), nil
}

// NewBrandHandler 品牌聚合分析 Handler
func NewBrandHandler(ctx context.Context, svc common.VarianceExecutor, meta *job.Meta, payload json.RawMessage) (common.HandlerServ, error) {
	return NewOrgHandler(ctx, svc, meta, payload)
}
