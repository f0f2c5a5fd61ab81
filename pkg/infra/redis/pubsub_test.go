package redis

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"eightball/variance/common/model"
)

// 需要真实 Redis：REDIS_ADDR=127.0.0.1:6379 go test ./pkg/infra/redis/
func TestPubSub_PublishVarianceComplete(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := NewPubSub(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("NewPubSub: %v", err)
	}
	defer p.Close()

	channel := "variance:complete:test-org"
	sub := p.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	want := &model.VarianceNotification{
		RequestID:   "req-1",
		OrgID:       "test-org",
		ActionType:  model.ActionAnalyzeOrg,
		Status:      model.CallbackStatusSuccess,
		ResultCount: 3,
		Timestamp:   time.Now().Unix(),
	}
	if err := p.PublishVarianceComplete(ctx, channel, want); err != nil {
		t.Fatalf("PublishVarianceComplete: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	var got model.VarianceNotification
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(want, &got); diff != "" {
		t.Errorf("notification mismatch (-want +got):\n%s", diff)
	}
}

func TestWaitVarianceComplete(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := NewPubSub(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("NewPubSub: %v", err)
	}
	defer p.Close()

	channel := "variance:complete:wait-org"
	sub := p.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// 其他请求的通知被跳过
	for _, id := range []string{"req-other", "req-mine"} {
		if err := p.PublishVarianceComplete(ctx, channel, &model.VarianceNotification{RequestID: id, OrgID: "wait-org"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	got, err := WaitVarianceComplete(ctx, sub, "req-mine")
	if err != nil {
		t.Fatalf("WaitVarianceComplete: %v", err)
	}
	if got.RequestID != "req-mine" {
		t.Errorf("request_id = %q", got.RequestID)
	}

	short, cancelShort := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancelShort()
	if _, err := WaitVarianceComplete(short, sub, "req-never"); err == nil {
		t.Error("expected timeout")
	}
}

func TestNewPubSub_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := NewPubSub(ctx, "127.0.0.1:1", "", 0); err == nil {
		t.Error("expected connection error")
	}
}
