package rank

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pipeline"
	"github.com/rushteam/unirec/pkg/utils"
	"github.com/rushteam/unirec/score"
)

// HybridNode 是混合打分排序 Node：
//
//	final = contentScore * w.Content + collaborativeScore * w.Collaborative
//
// 一次 Process 内权重向量与行为数据快照只取一次，整批候选统一使用。
// 单个候选打分失败（panic）只剔除该候选，绝不中断整批排序——
// 一个病态候选不能搞垮所有用户的推荐。
type HybridNode struct {
	Store core.InteractionStore

	Content       *score.ContentScorer
	Collaborative *score.CollaborativeScorer
	Weights       *AdaptiveWeights

	// 行为历史各档拉取上限，零值取默认 20 / 15 / 30。
	MaxClicks    int
	MaxWishlists int
	MaxViews     int

	// Parallelism 候选打分并发度。打分是只读纯计算，可安全并行；
	// <=1 表示串行。
	Parallelism int

	// Now 便于测试注入时钟，nil 时取 time.Now。
	Now func() time.Time
}

func (n *HybridNode) Name() string        { return "rank.hybrid" }
func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HybridNode) historyLimits() (clicks, wishlists, views int) {
	clicks, wishlists, views = n.MaxClicks, n.MaxWishlists, n.MaxViews
	if clicks <= 0 {
		clicks = 20
	}
	if wishlists <= 0 {
		wishlists = 15
	}
	if views <= 0 {
		views = 30
	}
	return
}

func (n *HybridNode) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n *HybridNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	now := n.now()
	userID := int64(0)
	if rctx != nil {
		userID = rctx.UserID
	}

	// 1. 权重一次性选定，排序中途不再更换
	weights := n.Weights.Select(ctx, userID)

	// 2. 行为历史 + 快照一次性拉取（失败按空历史降级）
	history, snapshots := n.loadHistory(ctx, userID)

	// 3. 共现快照一次性构建
	coctx := n.Collaborative.BuildContext(ctx, userID)

	// 4. 逐候选打分；单候选失败只剔除自身
	scored := make([]bool, len(items))
	scoreOne := func(i int) {
		defer func() {
			if r := recover(); r != nil {
				scored[i] = false
			}
		}()
		it := items[i]
		if it == nil {
			return
		}
		content := n.Content.Score(it, history, snapshots, now)
		collaborative := coctx.Score(it.ID)
		it.Score = content*weights.Content + collaborative*weights.Collaborative
		it.PutLabel("strategy", utils.Label{Value: weights.Strategy, Source: "rank"})
		scored[i] = true
	}

	if n.Parallelism > 1 {
		eg, _ := errgroup.WithContext(ctx)
		eg.SetLimit(n.Parallelism)
		for i := range items {
			i := i
			eg.Go(func() error {
				scoreOne(i)
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		for i := range items {
			scoreOne(i)
		}
	}

	out := make([]*core.Item, 0, len(items))
	for i, it := range items {
		if scored[i] && it != nil {
			out = append(out, it)
		}
	}

	// 5. 按分数稳定降序：同分保持候选输入顺序（创建时间倒序）
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// loadHistory 拉取行为束并批量解析行为物品的快照。
func (n *HybridNode) loadHistory(ctx context.Context, userID int64) (*core.InteractionHistory, map[int64]*core.Item) {
	empty := &core.InteractionHistory{}
	if n.Store == nil || userID == 0 {
		return empty, nil
	}

	maxClicks, maxWishlists, maxViews := n.historyLimits()
	history, err := n.Store.RecentInteractionHistory(ctx, userID, maxClicks, maxWishlists, maxViews)
	if err != nil || history == nil {
		return empty, nil
	}

	ids := history.ItemIDs()
	if len(ids) == 0 {
		return history, nil
	}
	idList := make([]int64, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	snapshots, err := n.Store.FindCandidatesByIDs(ctx, idList)
	if err != nil {
		return history, nil
	}
	return history, snapshots
}
