package model

import "encoding/json"

// VarianceCallback 差异分析回调消息（标准化）
// 用于 worker → 下游消费者的消息传递
type VarianceCallback struct {
	RequestID   string          `json:"request_id"`        // 对应请求的 request_id（链路追踪）
	OrgID       string          `json:"org_id"`            // 组织 ID
	ActionType  string          `json:"action_type"`       // 动作类型
	UnitID      string          `json:"unit_id,omitempty"` // 单元分析时的单元 ID
	Status      string          `json:"status"`            // 回调状态: SUCCESS / FAILED
	ResultCount int             `json:"result_count"`      // 结果条数（单元分析无结果为 0）
	Result      json.RawMessage `json:"result,omitempty"`  // 分析结果（成功时返回）
	Error       string          `json:"error,omitempty"`   // 错误信息（失败时返回）
	ProcessedAt int64           `json:"processed_at"`      // 处理时间戳（Unix timestamp）
}

// VarianceNotification 分析完成通知（Redis 发布）
type VarianceNotification struct {
	RequestID   string `json:"request_id"`
	OrgID       string `json:"org_id"`
	ActionType  string `json:"action_type"`
	Status      string `json:"status"`
	ResultCount int    `json:"result_count"`
	Timestamp   int64  `json:"timestamp"`
}

// 回调状态常量
const (
	CallbackStatusSuccess = "SUCCESS" // 分析成功
	CallbackStatusFailed  = "FAILED"  // 分析失败
)
