package business

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"eightball/variance/common/entity"
	"eightball/variance/internal/business/variance"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/infra/gormstore"
	"eightball/variance/pkg/logger"
)

func TestNewEngine_FromStore(t *testing.T) {
	store, err := gormstore.NewStore("sqlite", filepath.Join(t.TempDir(), "variance.db"), true)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	cost := 20.0
	if err := store.SaveUnit(ctx, &entity.Unit{
		ID: "u1", OrgID: "org-1", Brand: "Ketel", Product: "Vodka",
		Status: entity.UnitStatusActive, CurrentQuantity: 10, CostPrice: &cost,
	}); err != nil {
		t.Fatalf("SaveUnit: %v", err)
	}
	sale := entity.PosSale{
		ID: "s1", OrgID: "org-1", SaleDate: time.Now().Add(-time.Hour), CreatedAt: time.Now(),
		Items: []entity.PosSaleItem{{Name: "Ketel One Martini", Quantity: 4}},
	}
	if err := store.DB().Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	scanned := 3.0
	scan := entity.RfidScan{UnitID: "u1", OrgID: "org-1", ScannedAt: time.Now().Add(-time.Hour), Quantity: &scanned}
	if err := store.DB().Create(&scan).Error; err != nil {
		t.Fatalf("seed scan: %v", err)
	}

	detection := variance.DefaultConfig()
	detection.AnalysisWindowHours = 48
	cfg := &config.Config{
		Engine:    config.EngineConfig{BatchSize: 5, UnitTimeout: time.Second, Matcher: "substring"},
		Detection: &detection,
	}

	engine, err := NewEngine(store, cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if got := engine.DetectionConfig(ctx, "org-1"); got.AnalysisWindowHours != 48 {
		t.Errorf("fallback window = %d, want 48", got.AnalysisWindowHours)
	}

	result, err := engine.AnalyzeUnit(ctx, "u1", "org-1")
	if err != nil {
		t.Fatalf("AnalyzeUnit: %v", err)
	}
	if result == nil || result.DetectionType != variance.DetectionTheftSuspected || result.PosSalesCount != 1 {
		t.Fatalf("expected a theft result backed by one sale, got %+v", result)
	}

	bad := variance.DefaultConfig()
	bad.AnalysisWindowHours = 0
	cfg.Detection = &bad
	if _, err := NewEngine(store, cfg, logger.NewNopLogger()); !errors.Is(err, variance.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
