package varianceapi

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"eightball/variance/internal/business/variance"
	"eightball/variance/pkg/ginx"
	"eightball/variance/pkg/infra/gormstore"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ResultResponse 已入库的差异结果
type ResultResponse struct {
	*variance.VarianceResult
	ActorID *string `json:"actor_id"`
}

// ListResults 最近的差异结果
// GET /api/v1/orgs/:org_id/variance/results?limit=50
func (h *VarianceHandler) ListResults(c *gin.Context) {
	limit := defaultListLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			ginx.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	results, err := h.store.ListVarianceResults(c.Request.Context(), c.Param("org_id"), limit)
	if err != nil {
		h.logger.Errorf(c.Request.Context(), "[VarianceHandler] list results failed: %v", err)
		ginx.InternalError(c, "list results failed")
		return
	}
	if results == nil {
		results = []*variance.VarianceResult{}
	}
	ginx.Success(c, results)
}

// GetResult 单条差异结果
// GET /api/v1/orgs/:org_id/variance/results/:result_id
func (h *VarianceHandler) GetResult(c *gin.Context) {
	result, actorID, err := h.store.GetVarianceResult(c.Request.Context(), c.Param("org_id"), c.Param("result_id"))
	if err != nil {
		if errors.Is(err, gormstore.ErrNotFound) {
			ginx.NotFound(c, "result not found")
			return
		}
		h.logger.Errorf(c.Request.Context(), "[VarianceHandler] get result failed: %v", err)
		ginx.InternalError(c, "get result failed")
		return
	}
	ginx.Success(c, ResultResponse{VarianceResult: result, ActorID: actorID})
}
