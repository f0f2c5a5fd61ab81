package variance

import (
	"errors"
	"fmt"
)

const (
	// AcceptanceConfidence 结果入库的最低置信度
	AcceptanceConfidence = 0.6
	// MaterialityFloor 差异绝对值低于该值视为测量噪声
	MaterialityFloor = 0.1
	// HistoryDays 历史消耗样本回看天数
	HistoryDays = 30
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid detection config")
)

// SeverityThresholds 四档严重级别阈值（占期望数量的比例）
type SeverityThresholds struct {
	Low      float64 `json:"low" yaml:"low" mapstructure:"low"`
	Medium   float64 `json:"medium" yaml:"medium" mapstructure:"medium"`
	High     float64 `json:"high" yaml:"high" mapstructure:"high"`
	Critical float64 `json:"critical" yaml:"critical" mapstructure:"critical"`
}

// SourceWeights 三个数据源的可靠性权重
type SourceWeights struct {
	Pos     float64 `json:"pos" yaml:"pos" mapstructure:"pos"`
	Rfid    float64 `json:"rfid" yaml:"rfid" mapstructure:"rfid"`
	History float64 `json:"history" yaml:"history" mapstructure:"history"`
}

// DetectionConfig 每个组织一份的检测配置，只读
type DetectionConfig struct {
	Thresholds              SeverityThresholds `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
	AnalysisWindowHours     int                `json:"analysis_window_hours" yaml:"analysis_window_hours" mapstructure:"analysis_window_hours"`
	MinimumSalesForAnalysis int                `json:"minimum_sales_for_analysis" yaml:"minimum_sales_for_analysis" mapstructure:"minimum_sales_for_analysis"`
	Weights                 SourceWeights      `json:"weights" yaml:"weights" mapstructure:"weights"`
	EnableAnomalyDetection  bool               `json:"enable_anomaly_detection" yaml:"enable_anomaly_detection" mapstructure:"enable_anomaly_detection"`
	AnomalySensitivity      float64            `json:"anomaly_sensitivity" yaml:"anomaly_sensitivity" mapstructure:"anomaly_sensitivity"`
}

// DefaultConfig 返回默认检测配置
func DefaultConfig() DetectionConfig {
	return DetectionConfig{
		Thresholds: SeverityThresholds{
			Low:      0.1,
			Medium:   0.2,
			High:     0.3,
			Critical: 0.5,
		},
		AnalysisWindowHours:     24,
		MinimumSalesForAnalysis: 0,
		Weights: SourceWeights{
			Pos:     0.4,
			Rfid:    0.4,
			History: 0.2,
		},
		EnableAnomalyDetection: true,
		AnomalySensitivity:     0.5,
	}
}

// Validate 校验阈值严格递增、权重非负等约束
func (c DetectionConfig) Validate() error {
	t := c.Thresholds
	if t.Low < 0 {
		return fmt.Errorf("%w: low threshold %.3f is negative", ErrInvalidConfig, t.Low)
	}
	if !(t.Low < t.Medium && t.Medium < t.High && t.High < t.Critical) {
		return fmt.Errorf("%w: thresholds must be strictly increasing, got %.3f/%.3f/%.3f/%.3f",
			ErrInvalidConfig, t.Low, t.Medium, t.High, t.Critical)
	}
	if c.AnalysisWindowHours <= 0 {
		return fmt.Errorf("%w: analysis_window_hours must be positive", ErrInvalidConfig)
	}
	if c.MinimumSalesForAnalysis < 0 {
		return fmt.Errorf("%w: minimum_sales_for_analysis is negative", ErrInvalidConfig)
	}
	w := c.Weights
	if w.Pos < 0 || w.Rfid < 0 || w.History < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidConfig)
	}
	if c.AnomalySensitivity < 0 || c.AnomalySensitivity > 1 {
		return fmt.Errorf("%w: anomaly_sensitivity must be within [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// SeverityFor 返回 pct 命中的最高档位，未命中任何档位时为 low
func (c DetectionConfig) SeverityFor(pct float64) Severity {
	t := c.Thresholds
	switch {
	case pct >= t.Critical:
		return SeverityCritical
	case pct >= t.High:
		return SeverityHigh
	case pct >= t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
