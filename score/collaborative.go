package score

import (
	"context"

	"github.com/rushteam/unirec/core"
)

// CoViewContext 是协同打分用的共现快照：一次排序调用只构建一次，
// 整批候选共用，保证打分过程中数据视图一致。
type CoViewContext struct {
	counts map[int64]int64
	max    int64
}

// EmptyCoViewContext 返回空快照（匿名用户 / 查询失败时使用）。
func EmptyCoViewContext() *CoViewContext {
	return &CoViewContext{counts: map[int64]int64{}, max: 1}
}

// Empty 返回快照是否没有任何共现数据。
func (c *CoViewContext) Empty() bool {
	return c == nil || len(c.counts) == 0
}

// Score 返回候选物品的协同分：共现次数 / 最大共现次数。
// 不在快照中的物品得 0；分母下限 1，避免除零。
func (c *CoViewContext) Score(itemID int64) float64 {
	if c.Empty() {
		return 0.0
	}
	max := c.max
	if max < 1 {
		max = 1
	}
	return float64(c.counts[itemID]) / float64(max)
}

// CollaborativeScorer 基于"与该用户口味相近的用户还看了什么"的共现统计打分。
//
// 协同信号缺失绝不能中断排序：匿名用户、查询失败、共现为空时一律退化为
// 空快照（所有候选得 0），由内容信号独自支撑。
type CollaborativeScorer struct {
	Store core.InteractionStore

	// CandidateLimit 共现对拉取上限，<=0 时取默认 50。
	CandidateLimit int
}

func (s *CollaborativeScorer) limit() int {
	if s.CandidateLimit <= 0 {
		return 50
	}
	return s.CandidateLimit
}

// BuildContext 为一次排序调用构建共现快照。
func (s *CollaborativeScorer) BuildContext(ctx context.Context, userID int64) *CoViewContext {
	if s == nil || s.Store == nil || userID == 0 {
		return EmptyCoViewContext()
	}

	pairs, err := s.Store.CoViewedByUser(ctx, userID, s.limit())
	if err != nil || len(pairs) == 0 {
		// 查询失败按信号缺失降级
		return EmptyCoViewContext()
	}

	counts := make(map[int64]int64, len(pairs))
	var max int64 = 1
	for _, p := range pairs {
		if p.ItemID == 0 || p.Count <= 0 {
			continue
		}
		counts[p.ItemID] = p.Count
		if p.Count > max {
			max = p.Count
		}
	}
	if len(counts) == 0 {
		return EmptyCoViewContext()
	}
	return &CoViewContext{counts: counts, max: max}
}
