package score

import (
	"testing"
	"time"
)

func TestRecencyScorer_Score(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scorer := &RecencyScorer{Days: 30}

	tests := []struct {
		name     string
		created  time.Time
		expected float64
	}{
		{"当天", now, 1.0},
		{"未来时间（时钟偏差）", now.Add(24 * time.Hour), 1.0},
		{"15 天前线性中点", now.AddDate(0, 0, -15), 0.5},
		{"3 天前", now.AddDate(0, 0, -3), 0.9},
		{"刚好 30 天", now.AddDate(0, 0, -30), 0.0},
		{"远超窗口", now.AddDate(0, 0, -365), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.created, now)
			if !almostEqual(got, tt.expected) {
				t.Errorf("Score() = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}

func TestRecencyScorer_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// 零值配置按 30 天处理
	var scorer *RecencyScorer
	got := (&RecencyScorer{}).Score(now.AddDate(0, 0, -15), now)
	if !almostEqual(got, 0.5) {
		t.Errorf("零值 Days 应按 30 天衰减, got %v", got)
	}

	// nil scorer 的 ScoreItem 不应 panic
	if s := scorer.ScoreItem(nil, now); s != 0.0 {
		t.Errorf("nil item 应得 0.0, got %v", s)
	}
}

func almostEqual(a, b float64) bool {
	const eps = 1e-9
	return a-b < eps && b-a < eps
}
