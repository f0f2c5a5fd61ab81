package variance

import (
	"context"
	"errors"
	"testing"
	"time"

	"eightball/variance/pkg/logger"
)

type engineFixture struct {
	catalog *fakeCatalog
	sales   *fakeSales
	scans   *fakeScans
	metrics *fakeMetrics
	sink    *fakeSink
	configs *fakeConfigs
}

// newEngineFixture u1 为盗损场景（置信度 0.68），u2 只有 POS 证据（置信度 0.36）
func newEngineFixture() *engineFixture {
	return &engineFixture{
		catalog: newFakeCatalog(
			activeUnit("u1", "Grey Goose", "Vodka", 10),
			activeUnit("u2", "Ketel", "One", 5),
		),
		sales: &fakeSales{sales: []Sale{
			{Date: testNow.Add(-2 * time.Hour), Items: []SaleLine{
				{Name: "Grey Goose Martini", Quantity: 2},
				{Name: "Ketel Soda", Quantity: 1},
			}},
		}},
		scans: &fakeScans{byUnit: map[string][]ScanEvent{
			"u1": {{Timestamp: testNow.Add(-time.Hour), Quantity: ptr(5.0)}},
		}},
		metrics: &fakeMetrics{},
		sink:    &fakeSink{},
		configs: &fakeConfigs{},
	}
}

func (f *engineFixture) engine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	e, err := NewEngine(Deps{
		Catalog: f.catalog,
		Sales:   f.sales,
		Scans:   f.scans,
		Metrics: f.metrics,
		Sink:    f.sink,
		Configs: f.configs,
	}, opts, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// stalledSales 阻塞到 ctx 结束
type stalledSales struct {
	hadDeadline bool
}

func (s *stalledSales) GetSalesInWindow(ctx context.Context, orgID string, since time.Time) ([]Sale, error) {
	_, s.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestEngine_AnalyzeUnit_StalledFeedHitsUnitTimeout(t *testing.T) {
	f := newEngineFixture()
	stalled := &stalledSales{}
	e, err := NewEngine(Deps{
		Catalog: f.catalog,
		Sales:   stalled,
		Scans:   f.scans,
		Metrics: f.metrics,
		Sink:    f.sink,
		Configs: f.configs,
	}, Options{Now: fixedNow, UnitTimeout: 50 * time.Millisecond}, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.AnalyzeUnit(context.Background(), "u1", "org-1")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AnalyzeUnit did not return after the unit timeout")
	}
	if !stalled.hadDeadline {
		t.Error("single-unit analysis should run under a deadline")
	}
}

func TestEngine_AnalyzeUnit_PersistsAcceptedResult(t *testing.T) {
	f := newEngineFixture()
	e := f.engine(t, Options{})

	res, err := e.AnalyzeUnit(context.Background(), "u1", "org-1", WithActor("user-42"))
	if err != nil {
		t.Fatalf("AnalyzeUnit: %v", err)
	}
	if res == nil {
		t.Fatal("expected result, got nil")
	}
	if res.DetectionType != DetectionTheftSuspected || res.Severity != SeverityHigh {
		t.Errorf("got %s/%s, want theft_suspected/high", res.DetectionType, res.Severity)
	}
	if !approx(res.ConfidenceScore, 0.68) {
		t.Errorf("confidence = %v, want 0.68", res.ConfidenceScore)
	}

	if len(f.sink.stored) != 1 || f.sink.stored[0] != res {
		t.Fatalf("expected result to be stored once, got %d", len(f.sink.stored))
	}
	if f.sink.actors[0] == nil || *f.sink.actors[0] != "user-42" {
		t.Errorf("actor = %v, want user-42", f.sink.actors[0])
	}
}

func TestEngine_AnalyzeUnit_SystemActor(t *testing.T) {
	f := newEngineFixture()
	e := f.engine(t, Options{})

	if _, err := e.AnalyzeUnit(context.Background(), "u1", "org-1", WithActor("")); err != nil {
		t.Fatalf("AnalyzeUnit: %v", err)
	}
	if len(f.sink.actors) != 1 || f.sink.actors[0] != nil {
		t.Errorf("expected nil actor for system run, got %v", f.sink.actors)
	}
}

func TestEngine_AnalyzeUnit_BelowAcceptance(t *testing.T) {
	f := newEngineFixture()
	e := f.engine(t, Options{})

	res, err := e.AnalyzeUnit(context.Background(), "u2", "org-1")
	if err != nil {
		t.Fatalf("AnalyzeUnit: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil for low-confidence result, got confidence %v", res.ConfidenceScore)
	}
	if len(f.sink.stored) != 0 {
		t.Errorf("low-confidence result must not be stored")
	}
}

func TestEngine_AnalyzeUnit_SinkFailure(t *testing.T) {
	f := newEngineFixture()
	f.sink.err = errStoreDown
	e := f.engine(t, Options{})

	res, err := e.AnalyzeUnit(context.Background(), "u1", "org-1")
	if err != nil {
		t.Fatalf("sink failure must not surface: %v", err)
	}
	if res == nil {
		t.Fatal("result must still be returned when persistence fails")
	}
}

func TestEngine_AnalyzeUnit_InvalidArguments(t *testing.T) {
	e := newEngineFixture().engine(t, Options{})

	for _, args := range [][2]string{{"", "org-1"}, {"u1", ""}, {"u1", "   "}} {
		_, err := e.AnalyzeUnit(context.Background(), args[0], args[1])
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("AnalyzeUnit(%q, %q) err = %v, want ErrInvalidArgument", args[0], args[1], err)
		}
	}
	if _, err := e.AnalyzeOrganization(context.Background(), ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AnalyzeOrganization err = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.AnalyzeBrandVariance(context.Background(), ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AnalyzeBrandVariance err = %v, want ErrInvalidArgument", err)
	}
}

func TestEngine_AnalyzeUnit_UnknownUnit(t *testing.T) {
	e := newEngineFixture().engine(t, Options{})
	res, err := e.AnalyzeUnit(context.Background(), "nope", "org-1")
	if err != nil || res != nil {
		t.Errorf("expected (nil, nil) for unknown unit, got (%v, %v)", res, err)
	}
}

func TestEngine_AnalyzeUnit_Cancelled(t *testing.T) {
	f := newEngineFixture()
	e := f.engine(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := e.AnalyzeUnit(ctx, "u1", "org-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res != nil || len(f.sink.stored) != 0 {
		t.Error("cancelled analysis must not produce or store a result")
	}
}

func TestEngine_DetectionConfig(t *testing.T) {
	custom := DefaultConfig()
	custom.AnalysisWindowHours = 48

	broken := DefaultConfig()
	broken.Thresholds = SeverityThresholds{Low: 0.5, Medium: 0.3, High: 0.2, Critical: 0.1}

	tests := []struct {
		name    string
		configs *fakeConfigs
		want    int
	}{
		{"not configured", &fakeConfigs{}, 24},
		{"stored config", &fakeConfigs{cfg: &custom}, 48},
		{"invalid stored config", &fakeConfigs{cfg: &broken}, 24},
		{"source error", &fakeConfigs{err: errStoreDown}, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture()
			f.configs = tt.configs
			e := f.engine(t, Options{})

			if got := e.DetectionConfig(context.Background(), "org-1").AnalysisWindowHours; got != tt.want {
				t.Errorf("window = %d, want %d", got, tt.want)
			}

			if _, err := e.AnalyzeUnit(context.Background(), "u1", "org-1"); err != nil {
				t.Fatalf("AnalyzeUnit: %v", err)
			}
			wantSince := testNow.Add(-time.Duration(tt.want) * time.Hour)
			if !f.sales.since.Equal(wantSince) {
				t.Errorf("sales window since %v, want %v", f.sales.since, wantSince)
			}
		})
	}
}

func TestEngine_Fallback(t *testing.T) {
	f := newEngineFixture()
	fallback := DefaultConfig()
	fallback.MinimumSalesForAnalysis = 5
	e := f.engine(t, Options{Fallback: &fallback})

	res, err := e.AnalyzeUnit(context.Background(), "u1", "org-1")
	if err != nil {
		t.Fatalf("AnalyzeUnit: %v", err)
	}
	if res != nil {
		t.Error("expected fallback minimum sales to skip the unit")
	}

	bad := DefaultConfig()
	bad.AnalysisWindowHours = 0
	if _, err := NewEngine(Deps{Catalog: f.catalog}, Options{Fallback: &bad}, logger.NewNopLogger()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewEngine with invalid fallback err = %v, want ErrInvalidConfig", err)
	}
}

func TestEngine_AnalyzeOrganization(t *testing.T) {
	f := newEngineFixture()
	e := f.engine(t, Options{BatchSize: 1})

	results, err := e.AnalyzeOrganization(context.Background(), "org-1", WithActor("user-1"))
	if err != nil {
		t.Fatalf("AnalyzeOrganization: %v", err)
	}
	if len(results) != 1 || results[0].UnitID != "u1" {
		t.Fatalf("expected only u1 to pass acceptance, got %d results", len(results))
	}
	for _, r := range results {
		if r.ConfidenceScore < AcceptanceConfidence {
			t.Errorf("result %s below acceptance: %v", r.UnitID, r.ConfidenceScore)
		}
	}
	if len(f.sink.stored) != 1 || *f.sink.actors[0] != "user-1" {
		t.Errorf("expected one stored result with actor, got %d", len(f.sink.stored))
	}
}

func TestEngine_AnalyzeBrandVariance(t *testing.T) {
	f := newEngineFixture()
	e := f.engine(t, Options{})

	brands, err := e.AnalyzeBrandVariance(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("AnalyzeBrandVariance: %v", err)
	}
	if len(brands) != 1 {
		t.Fatalf("brands = %d, want 1", len(brands))
	}
	b := brands[0]
	if b.Brand != "Grey Goose" || b.Product != "Vodka" {
		t.Errorf("group = %s/%s", b.Brand, b.Product)
	}
	// rate=1, high=3, confidence 0.68: 40 + 45 + 30.6 → 100
	if b.RiskScore != 100 {
		t.Errorf("risk = %v, want 100", b.RiskScore)
	}
	if b.TotalUnits != 1 || b.UnitsWithVariance != 1 {
		t.Errorf("units total=%d with_variance=%d", b.TotalUnits, b.UnitsWithVariance)
	}
}
