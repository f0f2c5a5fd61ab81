package variance

import "time"

// rfidFreshWindow 视为"近期扫描"的时间窗
const rfidFreshWindow = 24 * time.Hour

// ConfidenceScore 按数据源加权计算置信度，多源互证得分高，单源或陈旧数据得分低
func ConfidenceScore(s *ConsumptionSnapshot, w SourceWeights) float64 {
	if s == nil {
		return 0
	}

	score := posTerm(s, w.Pos) + rfidTerm(s, w.Rfid) + historyTerm(s, w.History)

	switch {
	case score < 0:
		score = 0
	case score > 1:
		score = 1
	}
	return roundTo4Decimals(score)
}

func posTerm(s *ConsumptionSnapshot, weight float64) float64 {
	if len(s.Sales) > 0 {
		return weight * 0.8
	}
	return weight * 0.2
}

func rfidTerm(s *ConsumptionSnapshot, weight float64) float64 {
	if len(s.Scans) == 0 {
		return weight * 0.1
	}
	for _, scan := range s.Scans {
		if s.AnalyzedAt.Sub(scan.Timestamp) <= rfidFreshWindow {
			return weight * 0.9
		}
	}
	return weight * 0.5
}

func historyTerm(s *ConsumptionSnapshot, weight float64) float64 {
	switch n := len(s.History); {
	case n >= 7:
		return weight * 0.8
	case n >= 1:
		return weight * 0.4
	default:
		return 0
	}
}
