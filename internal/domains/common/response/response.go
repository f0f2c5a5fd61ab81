package response

import (
	"eightball/variance/common/model"
	"eightball/variance/internal/domains/common/job"
	"eightball/variance/pkg/errorutil"
)

// VarianceResult 差异分析任务结果，序列化后作为 JobResp.Data
type VarianceResult struct {
	ID       string                  `json:"id"`
	Status   string                  `json:"status"`
	Callback *model.VarianceCallback `json:"callback,omitempty"`
	Error    *errorutil.Error        `json:"error,omitempty"`
}

// NewVarianceResult 创建结果
func NewVarianceResult() *VarianceResult {
	return &VarianceResult{}
}

// Response 任务处理结果，doJobReport 据此决定 ACK / Release / Bury
type Response struct {
	Error     *errorutil.Error `json:"error"`
	Result    *VarianceResult  `json:"result"`
	Processed bool             `json:"processed"`
	Meta      *job.Meta        `json:"meta"`
}

// WrapResponse 以任务元数据和执行错误填充结果
func (r *Response) WrapResponse(result *VarianceResult, meta *job.Meta, err error) {
	result.ID = meta.ID
	result.Status = model.CallbackStatusSuccess
	if err != nil {
		result.Status = model.CallbackStatusFailed
		result.Error = errorutil.Wrap(err)
	}

	r.Processed = err == nil
	r.Meta = meta
	r.Error = errorutil.UnWrapResponse(err)
	r.Result = result
}

// Retryable 失败且可重试
func (r *Response) Retryable() bool {
	return r.Error != nil && r.Error.Retryable
}
