// Package score 实现推荐引擎的四个打分原语：最新性、两两相似度、
// 内容匹配、协同共现。所有打分输出都落在 [0.0, 1.0]，越界属于缺陷。
package score

import (
	"time"

	"github.com/rushteam/unirec/core"
)

// RecencyScorer 把物品年龄折算成 [0,1] 的新鲜度分数：
//   - 当天（含时钟偏差导致的未来时间）：1.0
//   - 满 Days 天及以上：0.0
//   - 之间线性衰减
type RecencyScorer struct {
	// Days 衰减到 0 所需天数，<=0 时取默认 30。
	Days int64
}

func (s *RecencyScorer) days() int64 {
	if s == nil || s.Days <= 0 {
		return 30
	}
	return s.Days
}

// Score 返回 createdAt 在 now 时刻的新鲜度。
func (s *RecencyScorer) Score(createdAt, now time.Time) float64 {
	daysOld := int64(now.Sub(createdAt).Hours() / 24)
	if daysOld <= 0 {
		return 1.0
	}
	days := s.days()
	if daysOld >= days {
		return 0.0
	}
	return 1.0 - float64(daysOld)/float64(days)
}

// ScoreItem 返回候选物品的新鲜度。
func (s *RecencyScorer) ScoreItem(it *core.Item, now time.Time) float64 {
	if it == nil {
		return 0.0
	}
	return s.Score(it.CreatedAt, now)
}
