package varianceapi

import (
	"errors"

	"github.com/gin-gonic/gin"

	"eightball/variance/internal/business/variance"
	"eightball/variance/pkg/ginx"
)

// DetectionConfigRequest 更新检测配置请求
type DetectionConfigRequest struct {
	Thresholds struct {
		Low      float64 `json:"low" binding:"gte=0"`
		Medium   float64 `json:"medium" binding:"gtfield=Low"`
		High     float64 `json:"high" binding:"gtfield=Medium"`
		Critical float64 `json:"critical" binding:"gtfield=High"`
	} `json:"thresholds"`
	AnalysisWindowHours     int `json:"analysis_window_hours" binding:"required,min=1,max=720"`
	MinimumSalesForAnalysis int `json:"minimum_sales_for_analysis" binding:"gte=0"`
	Weights                 struct {
		Pos     float64 `json:"pos" binding:"gte=0"`
		Rfid    float64 `json:"rfid" binding:"gte=0"`
		History float64 `json:"history" binding:"gte=0"`
	} `json:"weights"`
	EnableAnomalyDetection bool    `json:"enable_anomaly_detection"`
	AnomalySensitivity     float64 `json:"anomaly_sensitivity" binding:"gte=0,lte=1"`
}

// ToDetectionConfig 转换为领域配置
func (r *DetectionConfigRequest) ToDetectionConfig() variance.DetectionConfig {
	return variance.DetectionConfig{
		Thresholds: variance.SeverityThresholds{
			Low:      r.Thresholds.Low,
			Medium:   r.Thresholds.Medium,
			High:     r.Thresholds.High,
			Critical: r.Thresholds.Critical,
		},
		AnalysisWindowHours:     r.AnalysisWindowHours,
		MinimumSalesForAnalysis: r.MinimumSalesForAnalysis,
		Weights: variance.SourceWeights{
			Pos:     r.Weights.Pos,
			Rfid:    r.Weights.Rfid,
			History: r.Weights.History,
		},
		EnableAnomalyDetection: r.EnableAnomalyDetection,
		AnomalySensitivity:     r.AnomalySensitivity,
	}
}

// GetDefaultConfig 默认检测配置
// GET /api/v1/config/detection/default
func (h *VarianceHandler) GetDefaultConfig(c *gin.Context) {
	ginx.Success(c, variance.DefaultConfig())
}

// GetDetectionConfig 组织生效中的检测配置
// GET /api/v1/orgs/:org_id/config/detection
func (h *VarianceHandler) GetDetectionConfig(c *gin.Context) {
	ginx.Success(c, h.engine.DetectionConfig(c.Request.Context(), c.Param("org_id")))
}

// UpdateDetectionConfig 更新组织检测配置
// PUT /api/v1/orgs/:org_id/config/detection
func (h *VarianceHandler) UpdateDetectionConfig(c *gin.Context) {
	var req DetectionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	cfg := req.ToDetectionConfig()
	if err := h.store.SaveDetectionConfig(c.Request.Context(), c.Param("org_id"), cfg); err != nil {
		if errors.Is(err, variance.ErrInvalidConfig) {
			ginx.BadRequest(c, err.Error())
			return
		}
		h.logger.Errorf(c.Request.Context(), "[VarianceHandler] save detection config failed: %v", err)
		ginx.InternalError(c, "save detection config failed")
		return
	}
	ginx.Success(c, cfg)
}
