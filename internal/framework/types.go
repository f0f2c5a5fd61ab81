package framework

import "time"

// MessageSource 消息源，lmstfy 客户端实现
// Consume 在超时内未拉到消息时返回 (nil, nil)
type MessageSource interface {
	Consume(queue string, timeout, ttr time.Duration) (*Message, error)
	Ack(queue string, jobID string) error
}

// Message 消息结构（框架内部流转）
type Message struct {
	ID    string // 消息 ID
	Queue string // 队列名称
	Data  []byte // 原始 Job 数据
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	QueueName    string        // 队列名称
	Concurrency  int           // 并发拉取数
	Timeout      time.Duration // 拉取超时
	TTR          time.Duration // Time-To-Run
	Rate         time.Duration // 拉取间隔，0 表示不限速
	ErrorBackoff time.Duration // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Concurrency int           // 并发处理数
	BufferSize  int           // inputChan 缓冲区大小
	Timeout     time.Duration // 单个消息处理超时
}
