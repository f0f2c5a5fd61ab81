package variance

import (
	"context"
	"encoding/json"
	"fmt"

	"eightball/variance/common/model"
	"eightball/variance/internal/business"
	"eightball/variance/internal/domains/common"
	"eightball/variance/internal/domains/common/job"
	"eightball/variance/internal/domains/common/response"
	"eightball/variance/internal/framework"
	"eightball/variance/pkg/errorutil"
)

// Handler 差异分析 Handler（单元 / 组织 / 品牌共用）
type Handler struct {
	ctx   context.Context
	svc   common.VarianceExecutor
	meta  *job.Meta
	input *business.AnalyzeInput
}

func newHandler(ctx context.Context, svc common.VarianceExecutor, meta *job.Meta, data *model.VarianceBusinessData) *Handler {
	return &Handler{
		ctx:  ctx,
		svc:  svc,
		meta: meta,
		input: &business.AnalyzeInput{
			RequestID:  meta.RequestID,
			OrgID:      meta.OrgID,
			ActionType: meta.ActionType,
			UnitID:     data.UnitID,
			ActorID:    data.ActorID,
		},
	}
}

// GetProcess 处理分析请求
func (h *Handler) GetProcess() *response.Response {
	result := response.NewVarianceResult()

	err := framework.NewPreProcessor(
		h.validate,
		func(ctx context.Context) error { return h.execute(ctx, result) },
	).Run(h.ctx)

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)
	return resp
}

// validate 校验元信息
func (h *Handler) validate(ctx context.Context) error {
	if h.svc == nil {
		return errorutil.NonRetriable("variance service is not configured")
	}
	if h.input.OrgID == "" {
		return errorutil.NonRetriable("org_id is required")
	}
	if h.input.ActionType == model.ActionAnalyzeUnit && h.input.UnitID == "" {
		return errorutil.NonRetriable("unit_id is required")
	}
	return nil
}

// execute 调用 VarianceService 执行分析并发送回调
func (h *Handler) execute(ctx context.Context, result *response.VarianceResult) error {
	callback, err := h.svc.Execute(ctx, h.input)
	result.Callback = callback
	return err
}

// decodeBusinessData 解析业务数据，空数据视为无业务字段
func decodeBusinessData(payload json.RawMessage) (*model.VarianceBusinessData, error) {
	var data model.VarianceBusinessData
	if len(payload) == 0 || string(payload) == "null" {
		return &data, nil
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, errorutil.NonRetriableWithDetails("invalid business data", fmt.Sprintf("unmarshal failed: %v", err))
	}
	return &data, nil
}
