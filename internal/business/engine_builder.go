package business

import (
	"eightball/variance/internal/business/variance"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/infra/gormstore"
	"eightball/variance/pkg/logger"
)

// NewEngine 以 gorm 存储作为全部数据源组装差异检测引擎
func NewEngine(store *gormstore.Store, cfg *config.Config, log logger.Logger) (*variance.Engine, error) {
	return variance.NewEngine(variance.Deps{
		Catalog: store,
		Sales:   store,
		Scans:   store,
		Metrics: store,
		Sink:    store,
		Configs: store,
		Matcher: variance.MatcherByName(cfg.Engine.Matcher),
	}, variance.Options{
		BatchSize:   cfg.Engine.BatchSize,
		UnitTimeout: cfg.Engine.UnitTimeout,
		Fallback:    cfg.Detection,
	}, log)
}
