package variance

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func ptr[T any](v T) *T { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

var errStoreDown = errors.New("store unreachable")

type fakeCatalog struct {
	mu          sync.Mutex
	units       map[string]*Unit
	listErr     error
	getErr      error
	countErr    error
	brandCounts map[string]int64
}

func newFakeCatalog(units ...*Unit) *fakeCatalog {
	c := &fakeCatalog{
		units:       make(map[string]*Unit),
		brandCounts: make(map[string]int64),
	}
	for _, u := range units {
		c.units[u.ID] = u
	}
	return c
}

func (c *fakeCatalog) ListActiveUnitIDs(ctx context.Context, orgID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	ids := make([]string, 0, len(c.units))
	for id, u := range c.units {
		if u.OrgID == orgID && u.Active() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (c *fakeCatalog) GetUnit(ctx context.Context, unitID, orgID string) (*Unit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	u, ok := c.units[unitID]
	if !ok || u.OrgID != orgID {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (c *fakeCatalog) CountActiveUnitsByBrand(ctx context.Context, orgID, brand string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.countErr != nil {
		return 0, c.countErr
	}
	if n, ok := c.brandCounts[brand]; ok {
		return n, nil
	}
	var n int64
	for _, u := range c.units {
		if u.OrgID == orgID && u.Brand == brand && u.Active() {
			n++
		}
	}
	return n, nil
}

type fakeSales struct {
	mu    sync.Mutex
	sales []Sale
	err   error
	since time.Time
}

func (f *fakeSales) GetSalesInWindow(ctx context.Context, orgID string, since time.Time) ([]Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	return f.sales, nil
}

type fakeScans struct {
	byUnit map[string][]ScanEvent
	err    error
}

func (f *fakeScans) GetScansInWindow(ctx context.Context, unitID, orgID string, since time.Time) ([]ScanEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byUnit[unitID], nil
}

type fakeMetrics struct {
	mu      sync.Mutex
	samples []ConsumptionSample
	err     error
	since   time.Time
	limit   int
}

func (f *fakeMetrics) GetDailyConsumptionSamples(ctx context.Context, orgID string, since time.Time, limit int) ([]ConsumptionSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.samples, nil
}

type fakeSink struct {
	mu     sync.Mutex
	stored []*VarianceResult
	actors []*string
	err    error
}

func (f *fakeSink) StoreVarianceResult(ctx context.Context, orgID string, actorID *string, result *VarianceResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, result)
	f.actors = append(f.actors, actorID)
	return nil
}

type fakeConfigs struct {
	cfg *DetectionConfig
	err error
}

func (f *fakeConfigs) GetDetectionConfig(ctx context.Context, orgID string) (*DetectionConfig, error) {
	return f.cfg, f.err
}

func historySamples(n int, avg float64) []ConsumptionSample {
	out := make([]ConsumptionSample, n)
	for i := range out {
		out[i] = ConsumptionSample{
			Date:           testNow.AddDate(0, 0, -(i + 1)),
			AvgConsumption: avg,
		}
	}
	return out
}
