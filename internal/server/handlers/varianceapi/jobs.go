package varianceapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eightball/variance/common/model"
	"eightball/variance/internal/server/middlewares"
	"eightball/variance/pkg/ginx"
	"eightball/variance/pkg/logger"
)

// EnqueueRequest 异步分析请求
type EnqueueRequest struct {
	ActionType string `json:"action_type" binding:"required,oneof=variance_analyze_unit variance_analyze_org variance_analyze_brand"`
	UnitID     string `json:"unit_id" binding:"required_if=ActionType variance_analyze_unit"`
}

// EnqueueJob 异步分析，结果经 callback 队列与 Redis 通知返回
// POST /api/v1/orgs/:org_id/variance/jobs
func (h *VarianceHandler) EnqueueJob(c *gin.Context) {
	if h.queue == nil || h.jobQueue == "" {
		ginx.Error(c, http.StatusServiceUnavailable, "job queue is not configured")
		return
	}

	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	requestID := logger.TraceID(c.Request.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	job := model.NewVarianceJob(requestID, c.Param("org_id"), req.ActionType, model.VarianceBusinessData{
		UnitID:  req.UnitID,
		ActorID: middlewares.GetActorID(c),
	})
	jobID, err := h.queue.PublishJSON(h.jobQueue, job)
	if err != nil {
		h.logger.Errorf(c.Request.Context(), "[VarianceHandler] enqueue job failed: %v", err)
		ginx.InternalError(c, "enqueue job failed")
		return
	}

	h.logger.Infof(c.Request.Context(), "[VarianceHandler] job enqueued: %s, action_type=%s", jobID, req.ActionType)
	ginx.Accepted(c, jobID, requestID)
}
