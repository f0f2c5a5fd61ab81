package domains

import (
	"eightball/variance/common/model"
	"eightball/variance/internal/domains/common"
	"eightball/variance/internal/domains/handlers/variance"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	model.ActionAnalyzeUnit:  variance.NewUnitHandler,
	model.ActionAnalyzeOrg:   variance.NewOrgHandler,
	model.ActionAnalyzeBrand: variance.NewBrandHandler,
}
