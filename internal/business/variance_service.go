package business

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eightball/variance/common/model"
	"eightball/variance/internal/business/variance"
	"eightball/variance/pkg/errorutil"
	"eightball/variance/pkg/logger"
)

// Analyzer 差异检测引擎（*variance.Engine 实现）
type Analyzer interface {
	AnalyzeUnit(ctx context.Context, unitID, orgID string, opts ...variance.RunOption) (*variance.VarianceResult, error)
	AnalyzeOrganization(ctx context.Context, orgID string, opts ...variance.RunOption) ([]*variance.VarianceResult, error)
	AnalyzeBrandVariance(ctx context.Context, orgID string, opts ...variance.RunOption) ([]*variance.BrandVarianceResult, error)
}

// Publisher 回调队列发布（*lmstfy.Client 实现）
type Publisher interface {
	Publish(queue string, data []byte, ttl, delay uint32) error
}

// Notifier 完成通知（*redis.PubSub 实现）
type Notifier interface {
	PublishVarianceComplete(ctx context.Context, channel string, notification *model.VarianceNotification) error
}

// AnalyzeInput 分析请求
type AnalyzeInput struct {
	RequestID  string
	OrgID      string
	ActionType string
	UnitID     string
	ActorID    string
}

// VarianceService 差异分析服务
// 职责：执行分析 → 发送回调到 callback 队列 → 发布完成通知
type VarianceService struct {
	analyzer      Analyzer
	publisher     Publisher
	notifier      Notifier
	callbackQueue string
	notifyChannel string
	log           logger.Logger
	now           func() time.Time
}

// NewVarianceService 创建差异分析服务
// publisher / notifier 可为 nil，此时跳过对应步骤
func NewVarianceService(
	analyzer Analyzer,
	publisher Publisher,
	notifier Notifier,
	callbackQueue string,
	notifyChannel string,
	log logger.Logger,
) *VarianceService {
	return &VarianceService{
		analyzer:      analyzer,
		publisher:     publisher,
		notifier:      notifier,
		callbackQueue: callbackQueue,
		notifyChannel: notifyChannel,
		log:           log,
		now:           time.Now,
	}
}

// Execute 执行分析并发送回调
// 分析失败同样发送 FAILED 回调，返回的 error 已按可重试性分类
func (s *VarianceService) Execute(ctx context.Context, input *AnalyzeInput) (*model.VarianceCallback, error) {
	// 1. 执行分析
	result, count, runErr := s.run(ctx, input)

	// 2. 构造回调消息
	callback := &model.VarianceCallback{
		RequestID:   input.RequestID,
		OrgID:       input.OrgID,
		ActionType:  input.ActionType,
		UnitID:      input.UnitID,
		ProcessedAt: s.now().Unix(),
	}

	if runErr != nil {
		callback.Status = model.CallbackStatusFailed
		callback.Error = runErr.Error()
	} else {
		callback.Status = model.CallbackStatusSuccess
		callback.ResultCount = count
		if count > 0 {
			data, err := json.Marshal(result)
			if err != nil {
				return callback, errorutil.NonRetriableWithDetails("marshal result failed", err.Error())
			}
			callback.Result = data
		}
	}

	// 3. 发送回调到 callback 队列
	if s.publisher != nil && s.callbackQueue != "" {
		callbackJSON, err := json.Marshal(callback)
		if err != nil {
			return callback, errorutil.NonRetriableWithDetails("marshal callback failed", err.Error())
		}
		// ttl=0 表示永不过期, delay=0 表示立即可用
		if err := s.publisher.Publish(s.callbackQueue, callbackJSON, 0, 0); err != nil {
			return callback, errorutil.RetriableWithDetails("publish callback failed", err.Error())
		}
	}

	// 4. 发布完成通知（失败不影响任务结果）
	s.notify(ctx, callback)

	if runErr != nil {
		return callback, classify(runErr)
	}
	return callback, nil
}

// run 按动作类型调用引擎，返回结果及条数
func (s *VarianceService) run(ctx context.Context, input *AnalyzeInput) (interface{}, int, error) {
	actor := variance.WithActor(input.ActorID)

	switch input.ActionType {
	case model.ActionAnalyzeUnit:
		result, err := s.analyzer.AnalyzeUnit(ctx, input.UnitID, input.OrgID, actor)
		if err != nil || result == nil {
			return nil, 0, err
		}
		return result, 1, nil

	case model.ActionAnalyzeOrg:
		results, err := s.analyzer.AnalyzeOrganization(ctx, input.OrgID, actor)
		return results, len(results), err

	case model.ActionAnalyzeBrand:
		results, err := s.analyzer.AnalyzeBrandVariance(ctx, input.OrgID, actor)
		return results, len(results), err

	default:
		return nil, 0, errorutil.NonRetriable(fmt.Sprintf("unsupported action_type: %s", input.ActionType))
	}
}

func (s *VarianceService) notify(ctx context.Context, callback *model.VarianceCallback) {
	if s.notifier == nil || s.notifyChannel == "" {
		return
	}

	channel := fmt.Sprintf("%s:%s", s.notifyChannel, callback.OrgID)
	notification := &model.VarianceNotification{
		RequestID:   callback.RequestID,
		OrgID:       callback.OrgID,
		ActionType:  callback.ActionType,
		Status:      callback.Status,
		ResultCount: callback.ResultCount,
		Timestamp:   callback.ProcessedAt,
	}
	if err := s.notifier.PublishVarianceComplete(ctx, channel, notification); err != nil {
		s.log.Warnf(ctx, "[VarianceService] publish notification to %s failed: %v", channel, err)
	}
}

// classify 参数错误不可重试，其余视为临时故障
func classify(err error) error {
	var e *errorutil.Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, variance.ErrInvalidArgument) || errors.Is(err, variance.ErrInvalidConfig) {
		return errorutil.NonRetriableWithDetails(err.Error(), fmt.Sprintf("%+v", err))
	}
	return errorutil.RetriableWithDetails(err.Error(), fmt.Sprintf("%+v", err))
}
