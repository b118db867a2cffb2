// Package rank 实现混合打分排序与自适应权重选择。
package rank

import (
	"context"

	"github.com/rushteam/unirec/core"
)

// AdaptiveWeights 根据数据量自动选择权重档位：
//
//	档位        用户浏览 ≥   全站浏览 ≥   content  collaborative
//	默认(冷)    —           —           0.90     0.10
//	中间        10          1,000       0.70     0.30
//	均衡        30          5,000       0.50     0.50
//
// 取两个阈值同时满足的最高档；popularity / recency 槽位全档为 0（预留）。
// 档位判定是 (userViews, totalViews) 的纯函数，相同输入必得相同权重。
type AdaptiveWeights struct {
	// Counters 提供两个计数器，默认可直接用 core.InteractionStore，
	// 也可以接 feature store（见 feast 包）。
	Counters core.EngagementCounters

	// 阈值，零值取默认 10 / 1000 / 30 / 5000。
	MinUserViews       int64
	MinTotalViews      int64
	BalancedUserViews  int64
	BalancedTotalViews int64

	// 各档权重，零值取默认 0.90/0.10、0.70/0.30、0.50/0.50。
	DefaultContent           float64
	DefaultCollaborative     float64
	IntermediateContent      float64
	IntermediateCollaborative float64
	BalancedContent          float64
	BalancedCollaborative    float64
}

func (a *AdaptiveWeights) thresholds() (minUser, minTotal, balUser, balTotal int64) {
	minUser, minTotal = a.MinUserViews, a.MinTotalViews
	balUser, balTotal = a.BalancedUserViews, a.BalancedTotalViews
	if minUser <= 0 {
		minUser = 10
	}
	if minTotal <= 0 {
		minTotal = 1000
	}
	if balUser <= 0 {
		balUser = 30
	}
	if balTotal <= 0 {
		balTotal = 5000
	}
	return
}

func (a *AdaptiveWeights) tierWeights() (defC, defCF, midC, midCF, balC, balCF float64) {
	defC, defCF = a.DefaultContent, a.DefaultCollaborative
	midC, midCF = a.IntermediateContent, a.IntermediateCollaborative
	balC, balCF = a.BalancedContent, a.BalancedCollaborative
	if defC == 0 && defCF == 0 {
		defC, defCF = 0.90, 0.10
	}
	if midC == 0 && midCF == 0 {
		midC, midCF = 0.70, 0.30
	}
	if balC == 0 && balCF == 0 {
		balC, balCF = 0.50, 0.50
	}
	return
}

// Pick 是档位判定的纯函数形式。
func (a *AdaptiveWeights) Pick(userViews, totalViews int64) core.Weights {
	minUser, minTotal, balUser, balTotal := a.thresholds()
	defC, defCF, midC, midCF, balC, balCF := a.tierWeights()

	// 数据充分
	if userViews >= balUser && totalViews >= balTotal {
		return core.Weights{
			Content:       balC,
			Collaborative: balCF,
			Strategy:      core.StrategyBalanced,
		}
	}

	// 中间档
	if userViews >= minUser && totalViews >= minTotal {
		return core.Weights{
			Content:       midC,
			Collaborative: midCF,
			Strategy:      core.StrategyMix,
		}
	}

	// 数据不足（默认档）
	return core.Weights{
		Content:       defC,
		Collaborative: defCF,
		Strategy:      core.StrategyContentHeavy,
	}
}

// Select 查询计数器并选择权重档位。
// 匿名用户计 0 次浏览；计数器查询失败按 0 处理（降级到默认档）。
func (a *AdaptiveWeights) Select(ctx context.Context, userID int64) core.Weights {
	var userViews, totalViews int64

	if a.Counters != nil {
		if userID != 0 {
			if n, err := a.Counters.UserViewCount(ctx, userID); err == nil {
				userViews = n
			}
		}
		if n, err := a.Counters.TotalViewCount(ctx); err == nil {
			totalViews = n
		}
	}

	return a.Pick(userViews, totalViews)
}
