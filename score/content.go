package score

import (
	"time"

	"github.com/rushteam/unirec/core"
)

// ContentMode 是内容打分的聚合方式。
type ContentMode string

const (
	// ModeMax 取候选与各历史物品相似度的最大值：单个强匹配应当
	// 压过一堆弱匹配（best-match 语义）。
	ModeMax ContentMode = "max"

	// ModeWeighted 按行为权重（点击 1.0 带时间衰减 / 收藏 0.7 / 浏览 0.3）
	// 对相似度做加权平均。
	ModeWeighted ContentMode = "weighted"
)

// ContentScorer 基于用户近期行为历史为候选物品打内容分（0.0 ~ 1.0）。
//
//   - 无历史（冷启动 / 匿名）：返回中立分 0.5
//   - 有历史：按 Mode 聚合相似度，再叠加 recency(candidate) * RecencyBoost
//
// 注意：相似度内部已经含有一次候选最新性项（见 SimilarityScorer），这里的
// 外层 boost 是第二次叠加。两次叠加是刻意保留的历史行为，改掉会改变排序
// 结果；两个权重都可以在配置里单独清零。
type ContentScorer struct {
	Similarity *SimilarityScorer
	Recency    *RecencyScorer

	// Mode 默认 ModeMax。
	Mode ContentMode

	// RecencyBoost 外层最新性加成权重，0 视为默认 0.10。
	RecencyBoost float64

	// 时间衰减参数（仅 ModeWeighted 的点击档生效）。
	// 零值按 λ=0.1、阈值 7 天处理。
	DecayLambda        float64
	DecayThresholdDays int
}

func (s *ContentScorer) mode() ContentMode {
	if s.Mode == "" {
		return ModeMax
	}
	return s.Mode
}

func (s *ContentScorer) recencyBoost() float64 {
	if s.RecencyBoost == 0 {
		return 0.10
	}
	return s.RecencyBoost
}

func (s *ContentScorer) decayParams() (float64, int) {
	lambda, threshold := s.DecayLambda, s.DecayThresholdDays
	if lambda == 0 {
		lambda = 0.1
	}
	if threshold == 0 {
		threshold = 7
	}
	return lambda, threshold
}

// Score 为候选物品打内容分。
// history 是用户行为束，snapshots 是行为物品 ID → 快照 的预解析映射；
// 解析不到快照的行为记录跳过（物品可能已下架）。
func (s *ContentScorer) Score(candidate *core.Item, history *core.InteractionHistory, snapshots map[int64]*core.Item, now time.Time) float64 {
	if candidate == nil {
		return 0.0
	}
	if history.TotalCount() == 0 {
		return 0.5 // 冷启动：中立分
	}

	var base float64
	switch s.mode() {
	case ModeWeighted:
		base = s.weightedScore(candidate, history, snapshots, now)
	default:
		base = s.maxScore(candidate, history, snapshots, now)
	}

	base += s.Recency.ScoreItem(candidate, now) * s.recencyBoost()
	if base > 1.0 {
		base = 1.0
	}
	return base
}

// maxScore 取与各历史物品相似度的最大值。
func (s *ContentScorer) maxScore(candidate *core.Item, history *core.InteractionHistory, snapshots map[int64]*core.Item, now time.Time) float64 {
	best := -1.0
	for _, r := range history.All() {
		snap := snapshots[r.ItemID]
		if snap == nil {
			continue
		}
		if sim := s.Similarity.Score(snap, candidate, now); sim > best {
			best = sim
		}
	}
	if best < 0 {
		return 0.5 // 历史全部解析失败，与无历史同等对待
	}
	return best
}

// weightedScore 按行为权重加权平均；点击档另加时间衰减。
func (s *ContentScorer) weightedScore(candidate *core.Item, history *core.InteractionHistory, snapshots map[int64]*core.Item, now time.Time) float64 {
	lambda, threshold := s.decayParams()

	var totalScore, totalWeight float64

	for _, click := range history.Clicks {
		snap := snapshots[click.ItemID]
		if snap == nil {
			continue
		}
		w := click.DecayedWeight(lambda, threshold, now)
		totalScore += s.Similarity.Score(snap, candidate, now) * w
		totalWeight += w
	}

	for _, wish := range history.Wishlists {
		snap := snapshots[wish.ItemID]
		if snap == nil {
			continue
		}
		w := wish.Kind.BaseWeight()
		totalScore += s.Similarity.Score(snap, candidate, now) * w
		totalWeight += w
	}

	for _, view := range history.Views {
		snap := snapshots[view.ItemID]
		if snap == nil {
			continue
		}
		w := view.Kind.BaseWeight()
		totalScore += s.Similarity.Score(snap, candidate, now) * w
		totalWeight += w
	}

	if totalWeight <= 0 {
		return 0.5
	}
	return totalScore / totalWeight
}
