package business

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"eightball/variance/common/model"
	"eightball/variance/internal/business/variance"
	"eightball/variance/pkg/errorutil"
	"eightball/variance/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeAnalyzer struct {
	unit    *variance.VarianceResult
	org     []*variance.VarianceResult
	brands  []*variance.BrandVarianceResult
	err     error
	lastOrg string
}

func (f *fakeAnalyzer) AnalyzeUnit(ctx context.Context, unitID, orgID string, opts ...variance.RunOption) (*variance.VarianceResult, error) {
	f.lastOrg = orgID
	return f.unit, f.err
}

func (f *fakeAnalyzer) AnalyzeOrganization(ctx context.Context, orgID string, opts ...variance.RunOption) ([]*variance.VarianceResult, error) {
	f.lastOrg = orgID
	return f.org, f.err
}

func (f *fakeAnalyzer) AnalyzeBrandVariance(ctx context.Context, orgID string, opts ...variance.RunOption) ([]*variance.BrandVarianceResult, error) {
	f.lastOrg = orgID
	return f.brands, f.err
}

type published struct {
	queue string
	data  []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (f *fakePublisher) Publish(queue string, data []byte, ttl, delay uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{queue: queue, data: data})
	return nil
}

type fakeNotifier struct {
	channels      []string
	notifications []*model.VarianceNotification
	err           error
}

func (f *fakeNotifier) PublishVarianceComplete(ctx context.Context, channel string, n *model.VarianceNotification) error {
	f.channels = append(f.channels, channel)
	f.notifications = append(f.notifications, n)
	return f.err
}

func newTestService(a Analyzer, p Publisher, n Notifier) *VarianceService {
	s := NewVarianceService(a, p, n, "variance_callbacks", "variance:complete", logger.NewNopLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func theftResult() *variance.VarianceResult {
	return &variance.VarianceResult{
		ID:              "r1",
		UnitID:          "u1",
		DetectionType:   variance.DetectionTheftSuspected,
		Severity:        variance.SeverityHigh,
		VarianceAmount:  3,
		ConfidenceScore: 0.68,
		DetectedAt:      fixedNow,
	}
}

func TestVarianceService_ExecuteUnit(t *testing.T) {
	analyzer := &fakeAnalyzer{unit: theftResult()}
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	s := newTestService(analyzer, publisher, notifier)

	callback, err := s.Execute(context.Background(), &AnalyzeInput{
		RequestID:  "req-1",
		OrgID:      "org-1",
		ActionType: model.ActionAnalyzeUnit,
		UnitID:     "u1",
		ActorID:    "user-42",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if callback.Status != model.CallbackStatusSuccess || callback.ResultCount != 1 {
		t.Errorf("unexpected callback: %+v", callback)
	}
	if callback.ProcessedAt != fixedNow.Unix() {
		t.Errorf("processed_at = %d, want %d", callback.ProcessedAt, fixedNow.Unix())
	}

	var got variance.VarianceResult
	if err := json.Unmarshal(callback.Result, &got); err != nil {
		t.Fatalf("result is not a variance result: %v", err)
	}
	if diff := cmp.Diff(*theftResult(), got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	if len(publisher.sent) != 1 || publisher.sent[0].queue != "variance_callbacks" {
		t.Fatalf("expected one callback on variance_callbacks, got %+v", publisher.sent)
	}
	var sent model.VarianceCallback
	if err := json.Unmarshal(publisher.sent[0].data, &sent); err != nil {
		t.Fatalf("callback payload: %v", err)
	}
	if sent.RequestID != "req-1" || sent.UnitID != "u1" {
		t.Errorf("unexpected published callback: %+v", sent)
	}

	wantNotify := &model.VarianceNotification{
		RequestID:   "req-1",
		OrgID:       "org-1",
		ActionType:  model.ActionAnalyzeUnit,
		Status:      model.CallbackStatusSuccess,
		ResultCount: 1,
		Timestamp:   fixedNow.Unix(),
	}
	if diff := cmp.Diff([]string{"variance:complete:org-1"}, notifier.channels); diff != "" {
		t.Errorf("channel mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]*model.VarianceNotification{wantNotify}, notifier.notifications); diff != "" {
		t.Errorf("notification mismatch (-want +got):\n%s", diff)
	}
}

func TestVarianceService_NoVariance(t *testing.T) {
	publisher := &fakePublisher{}
	s := newTestService(&fakeAnalyzer{}, publisher, nil)

	callback, err := s.Execute(context.Background(), &AnalyzeInput{
		RequestID: "req-2", OrgID: "org-1", ActionType: model.ActionAnalyzeUnit, UnitID: "u2",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if callback.Status != model.CallbackStatusSuccess || callback.ResultCount != 0 || callback.Result != nil {
		t.Errorf("unexpected callback: %+v", callback)
	}
	if len(publisher.sent) != 1 {
		t.Errorf("callback must still be published, got %d", len(publisher.sent))
	}
}

func TestVarianceService_OrgAndBrand(t *testing.T) {
	analyzer := &fakeAnalyzer{
		org:    []*variance.VarianceResult{theftResult(), theftResult()},
		brands: []*variance.BrandVarianceResult{{Brand: "Grey Goose", Product: "Vodka", RiskScore: 93}},
	}
	s := newTestService(analyzer, &fakePublisher{}, nil)

	tests := []struct {
		action string
		count  int
	}{
		{model.ActionAnalyzeOrg, 2},
		{model.ActionAnalyzeBrand, 1},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			callback, err := s.Execute(context.Background(), &AnalyzeInput{
				RequestID: "req-3", OrgID: "org-7", ActionType: tt.action,
			})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if callback.ResultCount != tt.count {
				t.Errorf("result_count = %d, want %d", callback.ResultCount, tt.count)
			}
			if analyzer.lastOrg != "org-7" {
				t.Errorf("analyzer saw org %q", analyzer.lastOrg)
			}
		})
	}
}

func TestVarianceService_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		err       error
		retryable bool
	}{
		{"invalid argument", model.ActionAnalyzeUnit, fmt.Errorf("unit_id: %w", variance.ErrInvalidArgument), false},
		{"timeout", model.ActionAnalyzeOrg, context.DeadlineExceeded, true},
		{"store down", model.ActionAnalyzeBrand, errors.New("connection refused"), true},
		{"unknown action", "variance_unknown", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &fakePublisher{}
			s := newTestService(&fakeAnalyzer{err: tt.err}, publisher, nil)

			callback, err := s.Execute(context.Background(), &AnalyzeInput{
				RequestID: "req-4", OrgID: "org-1", ActionType: tt.action, UnitID: "u1",
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if errorutil.IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v (%v)", !tt.retryable, tt.retryable, err)
			}
			if callback.Status != model.CallbackStatusFailed || callback.Error == "" {
				t.Errorf("expected FAILED callback, got %+v", callback)
			}
			if len(publisher.sent) != 1 {
				t.Errorf("failed callback must be published, got %d", len(publisher.sent))
			}
		})
	}
}

func TestVarianceService_PublishFailure(t *testing.T) {
	notifier := &fakeNotifier{}
	s := newTestService(&fakeAnalyzer{unit: theftResult()}, &fakePublisher{err: errors.New("lmstfy down")}, notifier)

	_, err := s.Execute(context.Background(), &AnalyzeInput{
		RequestID: "req-5", OrgID: "org-1", ActionType: model.ActionAnalyzeUnit, UnitID: "u1",
	})
	if !errorutil.IsRetryable(err) {
		t.Fatalf("publish failure must be retryable, got %v", err)
	}
	if len(notifier.channels) != 0 {
		t.Error("notification must not be sent before the callback is published")
	}
}

func TestVarianceService_NotifyFailureIgnored(t *testing.T) {
	s := newTestService(&fakeAnalyzer{unit: theftResult()}, &fakePublisher{}, &fakeNotifier{err: errors.New("redis down")})

	if _, err := s.Execute(context.Background(), &AnalyzeInput{
		RequestID: "req-6", OrgID: "org-1", ActionType: model.ActionAnalyzeUnit, UnitID: "u1",
	}); err != nil {
		t.Errorf("notify failure must not fail the job: %v", err)
	}
}
