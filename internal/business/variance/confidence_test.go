package variance

import (
	"testing"
	"time"
)

func TestConfidenceScore(t *testing.T) {
	fresh := []ScanEvent{{Timestamp: testNow.Add(-2 * time.Hour)}}
	stale := []ScanEvent{{Timestamp: testNow.Add(-48 * time.Hour)}}
	w := DefaultConfig().Weights

	tests := []struct {
		name    string
		sales   []float64
		scans   []ScanEvent
		history []ConsumptionSample
		want    float64
	}{
		{"all sources corroborate", []float64{1}, fresh, historySamples(7, 1), 0.84},
		{"nothing", nil, nil, nil, 0.12},
		{"sales only", []float64{1}, nil, nil, 0.36},
		{"stale scan", []float64{1}, stale, nil, 0.52},
		{"fresh scan short history", []float64{1}, fresh, historySamples(3, 1), 0.76},
		{"no sales fresh scan full history", nil, fresh, historySamples(30, 1), 0.60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceScore(snapshot(5, tt.sales, tt.scans, tt.history), w)
			if !approx(got, tt.want) {
				t.Errorf("ConfidenceScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfidenceScore_Bounded(t *testing.T) {
	fresh := []ScanEvent{{Timestamp: testNow}}
	weights := []SourceWeights{
		{},
		{Pos: 1, Rfid: 1, History: 1},
		{Pos: 5, Rfid: 0, History: 0},
		{Pos: 0.4, Rfid: 0.4, History: 0.2},
	}
	snaps := []*ConsumptionSnapshot{
		snapshot(1, nil, nil, nil),
		snapshot(1, []float64{1}, fresh, historySamples(10, 1)),
		snapshot(1, []float64{1}, nil, historySamples(2, 1)),
	}

	for _, w := range weights {
		for _, s := range snaps {
			got := ConfidenceScore(s, w)
			if got < 0 || got > 1 {
				t.Errorf("ConfidenceScore(%+v) = %v, out of [0,1]", w, got)
			}
		}
	}
	if got := ConfidenceScore(nil, weights[1]); got != 0 {
		t.Errorf("nil snapshot score = %v, want 0", got)
	}
}
