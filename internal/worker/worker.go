package worker

import (
	"context"

	"eightball/variance/internal/framework"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/lmstfyx"
	"eightball/variance/pkg/logger"
)

// Worker 单个队列的消费单元
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

// WorkerInstance 一个队列对应一组 Subscriber + Processor
type WorkerInstance struct {
	ctx        context.Context
	cfg        config.WorkerConfig
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	done       chan struct{}
	logger     logger.Logger
}

// NewWorkerInstance 按 Worker 配置组装消费链路
// 配置需已通过 config.ValidateWorker
func NewWorkerInstance(
	ctx context.Context,
	cfg config.WorkerConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log logger.Logger,
) *WorkerInstance {
	return &WorkerInstance{
		ctx:        ctx,
		cfg:        cfg,
		subscriber: framework.NewSubscriber(subscriberConfig(cfg), source, log),
		processor:  framework.NewProcessor(processorConfig(cfg), proc, source, log),
		inputChan:  make(chan *framework.Message, cfg.Processor.BufferSize),
		done:       make(chan struct{}),
		logger:     log,
	}
}

func subscriberConfig(cfg config.WorkerConfig) *framework.SubscriberConfig {
	return &framework.SubscriberConfig{
		QueueName:    cfg.QueueName,
		Concurrency:  cfg.Subscriber.Threads,
		Rate:         cfg.Subscriber.Rate,
		Timeout:      cfg.Subscriber.Timeout,
		TTR:          cfg.Subscriber.TTR,
		ErrorBackoff: cfg.Subscriber.ErrorBackoff,
	}
}

func processorConfig(cfg config.WorkerConfig) *framework.ProcessorConfig {
	return &framework.ProcessorConfig{
		Concurrency: cfg.Processor.Threads,
		BufferSize:  cfg.Processor.BufferSize,
		Timeout:     cfg.Processor.Timeout,
	}
}

// Start 先起 Processor 再起 Subscriber，阻塞到 Shutdown 完成
func (w *WorkerInstance) Start() {
	w.logger.Infof(w.ctx, "[Worker] %s consuming %s: subscribers=%d, processors=%d",
		w.cfg.Name, w.cfg.QueueName, w.cfg.Subscriber.Threads, w.cfg.Processor.Threads)

	w.processor.Start(w.ctx, w.inputChan)
	w.subscriber.Start(w.ctx, w.inputChan)

	<-w.done
}

// Shutdown 停止拉取后排空已拉取的任务，未 ACK 的任务由 lmstfy 在 TTR 后重投
func (w *WorkerInstance) Shutdown() {
	w.logger.Infof(w.ctx, "[Worker] %s stopping", w.cfg.Name)

	// 1. 停止拉取并等待 Subscriber 退出，之后不会再有新消息进入 inputChan
	w.subscriber.Stop()
	w.subscriber.Wait()

	// 2. Processor 处理完缓冲中的消息后退出
	w.processor.SignalShutdown()
	w.processor.Wait()

	close(w.done)
	w.logger.Infof(w.ctx, "[Worker] %s stopped", w.cfg.Name)
}

// GetName 获取 Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.cfg.Name
}
