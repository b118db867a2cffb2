package rank

import (
	"context"
	"testing"

	"github.com/rushteam/unirec/core"
)

func TestAdaptiveWeights_Pick(t *testing.T) {
	a := &AdaptiveWeights{}

	tests := []struct {
		name          string
		userViews     int64
		totalViews    int64
		content       float64
		collaborative float64
		strategy      string
	}{
		{"新用户冷站点", 0, 50, 0.90, 0.10, core.StrategyContentHeavy},
		{"用户活跃但站点冷", 100, 500, 0.90, 0.10, core.StrategyContentHeavy},
		{"站点热但用户冷", 5, 10000, 0.90, 0.10, core.StrategyContentHeavy},
		{"中间档下界", 10, 1000, 0.70, 0.30, core.StrategyMix},
		{"中间档", 20, 3000, 0.70, 0.30, core.StrategyMix},
		{"用户够均衡但站点只够中间", 35, 4000, 0.70, 0.30, core.StrategyMix},
		{"均衡档下界", 30, 5000, 0.50, 0.50, core.StrategyBalanced},
		{"数据充分", 35, 6000, 0.50, 0.50, core.StrategyBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.Pick(tt.userViews, tt.totalViews)
			if w.Content != tt.content || w.Collaborative != tt.collaborative {
				t.Errorf("Pick(%d, %d) = %v/%v, 期望 %v/%v",
					tt.userViews, tt.totalViews, w.Content, w.Collaborative, tt.content, tt.collaborative)
			}
			if w.Strategy != tt.strategy {
				t.Errorf("strategy = %q, 期望 %q", w.Strategy, tt.strategy)
			}
			if w.Popularity != 0 || w.Recency != 0 {
				t.Errorf("popularity/recency 槽位应保留为 0")
			}
			if !w.Valid() {
				t.Errorf("权重向量不合法: %+v", w)
			}
		})
	}
}

// counterStub 可注入计数与错误。
type counterStub struct {
	user, total       int64
	userErr, totalErr error
}

func (c *counterStub) UserViewCount(_ context.Context, _ int64) (int64, error) {
	return c.user, c.userErr
}
func (c *counterStub) TotalViewCount(_ context.Context) (int64, error) {
	return c.total, c.totalErr
}

func TestAdaptiveWeights_Select(t *testing.T) {
	ctx := context.Background()

	t.Run("匿名用户不查用户计数", func(t *testing.T) {
		a := &AdaptiveWeights{Counters: &counterStub{user: 100, total: 10000}}
		w := a.Select(ctx, 0)
		// 匿名 userViews 按 0，即使全站数据充分也只能走默认档
		if w.Strategy != core.StrategyContentHeavy {
			t.Errorf("匿名用户应走默认档, got %q", w.Strategy)
		}
	})

	t.Run("计数器查询失败按 0 降级", func(t *testing.T) {
		a := &AdaptiveWeights{Counters: &counterStub{
			user: 50, userErr: context.DeadlineExceeded,
			total: 9000, totalErr: context.DeadlineExceeded,
		}}
		w := a.Select(ctx, 42)
		if w.Strategy != core.StrategyContentHeavy {
			t.Errorf("计数失败应降级到默认档, got %q", w.Strategy)
		}
	})

	t.Run("数据充分走均衡档", func(t *testing.T) {
		a := &AdaptiveWeights{Counters: &counterStub{user: 31, total: 5001}}
		w := a.Select(ctx, 42)
		if w.Strategy != core.StrategyBalanced {
			t.Errorf("应走均衡档, got %q", w.Strategy)
		}
	})

	t.Run("无计数器", func(t *testing.T) {
		a := &AdaptiveWeights{}
		if w := a.Select(ctx, 42); w.Strategy != core.StrategyContentHeavy {
			t.Errorf("无计数器应走默认档, got %q", w.Strategy)
		}
	})
}
