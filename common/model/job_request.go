package model

// 动作类型（路由键）
const (
	ActionAnalyzeUnit  = "variance_analyze_unit"
	ActionAnalyzeOrg   = "variance_analyze_org"
	ActionAnalyzeBrand = "variance_analyze_brand"
)

// VarianceJob 差异分析任务消息（标准化）
// 用于 API / CLI → worker 的消息传递
type VarianceJob struct {
	Payload VariancePayload `json:"payload"`
}

// VariancePayload Job 负载
type VariancePayload struct {
	Data VarianceJobData `json:"data"`
}

// VarianceJobData Job 数据层
type VarianceJobData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	OrgID      string `json:"org_id"`      // 组织 ID
	ActionType string `json:"action_type"` // 动作类型
	ID         string `json:"id"`          // 业务 ID（单元分析为 unit_id，其余为 org_id）

	// 业务数据
	Data VarianceBusinessData `json:"data"`
}

// VarianceBusinessData 差异分析业务数据
type VarianceBusinessData struct {
	UnitID  string `json:"unit_id,omitempty"`  // 单元分析必填
	ActorID string `json:"actor_id,omitempty"` // 触发人，空表示系统触发
}

// NewVarianceJob 构造标准任务消息
func NewVarianceJob(requestID, orgID, actionType string, data VarianceBusinessData) *VarianceJob {
	id := orgID
	if actionType == ActionAnalyzeUnit {
		id = data.UnitID
	}
	return &VarianceJob{
		Payload: VariancePayload{
			Data: VarianceJobData{
				RequestID:  requestID,
				OrgID:      orgID,
				ActionType: actionType,
				ID:         id,
				Data:       data,
			},
		},
	}
}
