package varianceapi

import (
	"errors"

	"github.com/gin-gonic/gin"

	"eightball/variance/internal/business/variance"
	"eightball/variance/internal/server/middlewares"
	"eightball/variance/pkg/ginx"
)

// AnalyzeUnit 单元差异分析
// POST /api/v1/orgs/:org_id/units/:unit_id/variance
// 无显著差异时 data 为 null
func (h *VarianceHandler) AnalyzeUnit(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.engine.AnalyzeUnit(ctx, c.Param("unit_id"), c.Param("org_id"),
		variance.WithActor(middlewares.GetActorID(c)))
	if err != nil {
		h.writeEngineError(c, "analyze unit", err)
		return
	}
	ginx.Success(c, result)
}

// AnalyzeOrganization 组织批量差异分析
// POST /api/v1/orgs/:org_id/variance
func (h *VarianceHandler) AnalyzeOrganization(c *gin.Context) {
	ctx := c.Request.Context()
	results, err := h.engine.AnalyzeOrganization(ctx, c.Param("org_id"),
		variance.WithActor(middlewares.GetActorID(c)))
	if err != nil {
		h.writeEngineError(c, "analyze organization", err)
		return
	}
	if results == nil {
		results = []*variance.VarianceResult{}
	}
	ginx.Success(c, results)
}

// AnalyzeBrands 品牌聚合分析
// GET /api/v1/orgs/:org_id/brands/variance
func (h *VarianceHandler) AnalyzeBrands(c *gin.Context) {
	ctx := c.Request.Context()
	results, err := h.engine.AnalyzeBrandVariance(ctx, c.Param("org_id"),
		variance.WithActor(middlewares.GetActorID(c)))
	if err != nil {
		h.writeEngineError(c, "analyze brands", err)
		return
	}
	if results == nil {
		results = []*variance.BrandVarianceResult{}
	}
	ginx.Success(c, results)
}

func (h *VarianceHandler) writeEngineError(c *gin.Context, op string, err error) {
	if errors.Is(err, variance.ErrInvalidArgument) {
		ginx.BadRequest(c, err.Error())
		return
	}
	h.logger.Errorf(c.Request.Context(), "[VarianceHandler] %s failed: %v", op, err)
	ginx.InternalError(c, err.Error())
}
