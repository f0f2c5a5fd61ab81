package variance

import (
	"context"
	"encoding/json"

	"eightball/variance/internal/domains/common"
	"eightball/variance/internal/domains/common/job"
)

// NewUnitHandler 单元分析 Handler
// unit_id 缺省时取 Job 的业务 ID
func NewUnitHandler(ctx context.Context, svc common.VarianceExecutor, meta *job.Meta, payload json.RawMessage) (common.HandlerServ, error) {
	data, err := decodeBusinessData(payload)
	if err != nil {
		return nil, err
	}
	if data.UnitID == "" {
		data.UnitID = meta.ID
	}
	return newHandler(ctx, svc, meta, data), nil
}
