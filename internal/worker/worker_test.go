package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/atomic"

	"eightball/variance/internal/framework"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/lmstfyx"
	"eightball/variance/pkg/logger"
)

type queueSource struct {
	mu      sync.Mutex
	pending []*framework.Message
	acked   map[string]bool
}

func (q *queueSource) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	return msg, nil
}

func (q *queueSource) Ack(queue string, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked[jobID] = true
	return nil
}

func (q *queueSource) ackedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.acked)
}

func TestWorkerInstance_ProcessAndShutdown(t *testing.T) {
	source := &queueSource{acked: map[string]bool{}}
	for _, id := range []string{"a", "b", "c"} {
		source.pending = append(source.pending, &framework.Message{ID: id, Queue: "variance_jobs"})
	}

	processed := atomic.NewInt32(0)
	proc := func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		processed.Inc()
		return lmstfyx.Success(nil)
	}

	cfg := config.WorkerConfig{
		Name:       "variance",
		QueueName:  "variance_jobs",
		Subscriber: config.SubscriberConfig{Threads: 1, Timeout: time.Millisecond},
		Processor:  config.ProcessorConfig{Threads: 2, BufferSize: 4, Timeout: time.Second},
	}
	w := NewWorkerInstance(context.Background(), cfg, source, proc, logger.NewNopLogger())

	done := make(chan struct{})
	go func() {
		w.Start()
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for source.ackedCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	w.Shutdown()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}

	if processed.Load() != 3 || source.ackedCount() != 3 {
		t.Errorf("processed %d, acked %d; want 3/3", processed.Load(), source.ackedCount())
	}
	if w.GetName() != "variance" {
		t.Errorf("name = %q", w.GetName())
	}
}

func TestWorkerConfigMapping(t *testing.T) {
	cfg := config.WorkerConfig{
		QueueName: "variance_jobs",
		Subscriber: config.SubscriberConfig{
			Threads: 2, Rate: 100 * time.Millisecond, Timeout: 3 * time.Second,
			TTR: time.Minute, ErrorBackoff: time.Second,
		},
		Processor: config.ProcessorConfig{Threads: 8, BufferSize: 64, Timeout: 30 * time.Second},
	}

	wantSub := &framework.SubscriberConfig{
		QueueName: "variance_jobs", Concurrency: 2, Rate: 100 * time.Millisecond,
		Timeout: 3 * time.Second, TTR: time.Minute, ErrorBackoff: time.Second,
	}
	if diff := cmp.Diff(wantSub, subscriberConfig(cfg)); diff != "" {
		t.Errorf("subscriber config mismatch (-want +got):\n%s", diff)
	}
	wantProc := &framework.ProcessorConfig{Concurrency: 8, BufferSize: 64, Timeout: 30 * time.Second}
	if diff := cmp.Diff(wantProc, processorConfig(cfg)); diff != "" {
		t.Errorf("processor config mismatch (-want +got):\n%s", diff)
	}
}
