package common

import (
	"context"
	"encoding/json"

	"eightball/variance/common/model"
	"eightball/variance/internal/business"
	"eightball/variance/internal/domains/common/job"
	"eightball/variance/internal/domains/common/response"
)

// VarianceExecutor 差异分析执行者（*business.VarianceService 实现）
type VarianceExecutor interface {
	Execute(ctx context.Context, input *business.AnalyzeInput) (*model.VarianceCallback, error)
}

// HandlerServProc Handler 构造函数类型
type HandlerServProc func(ctx context.Context, svc VarianceExecutor, meta *job.Meta, payload json.RawMessage) (HandlerServ, error)

// HandlerServ Handler 接口
type HandlerServ interface {
	GetProcess() *response.Response
}
