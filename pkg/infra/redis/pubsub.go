package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"eightball/variance/common/model"
)

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client *redis.Client
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(ctx context.Context, addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PubSub{
		client: client,
	}, nil
}

// PublishVarianceComplete 发布分析完成通知
// 参数：
//   - ctx: 上下文
//   - channel: Redis 频道名称（如 variance:complete:<org_id>）
//   - notification: 通知消息
func (p *PubSub) PublishVarianceComplete(
	ctx context.Context,
	channel string,
	notification *model.VarianceNotification,
) error {
	// 序列化通知消息
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	// 发布到 Redis 频道
	if err := p.client.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Subscribe 订阅 Redis 频道
func (p *PubSub) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return p.client.Subscribe(ctx, channel)
}

// WaitVarianceComplete 在已订阅的频道上等待指定请求的完成通知
// 需在发布任务前订阅，否则可能错过通知
func WaitVarianceComplete(ctx context.Context, sub *redis.PubSub, requestID string) (*model.VarianceNotification, error) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil, fmt.Errorf("subscription closed")
			}
			var notification model.VarianceNotification
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				continue
			}
			if notification.RequestID == requestID {
				return &notification, nil
			}
		}
	}
}

// Close 关闭 Redis 连接
func (p *PubSub) Close() error {
	return p.client.Close()
}
