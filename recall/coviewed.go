package recall

import (
	"context"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pipeline"
	"github.com/rushteam/unirec/pkg/utils"
)

// CoViewed 是物品种子协同召回源：以 rctx.SeedItemID 为锚点，
// 取同会话共同浏览计数最高的物品。种子缺失时返回空集。
type CoViewed struct {
	Store core.InteractionStore

	// Limit 召回条数上限，<=0 取默认 50。
	Limit int
}

func (r *CoViewed) Name() string        { return "recall.coviewed" }
func (r *CoViewed) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *CoViewed) limit() int {
	if r.Limit <= 0 {
		return 50
	}
	return r.Limit
}

// Process 实现 Node 接口。
func (r *CoViewed) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *CoViewed) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || rctx == nil || rctx.SeedItemID <= 0 {
		return nil, nil
	}

	pairs, err := r.Store.CoViewedByItem(ctx, rctx.SeedItemID, r.limit())
	if err != nil {
		// 协同信号是增强信号，查询失败按空集处理。
		return nil, nil
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, p.ItemID)
	}
	snapshots, err := r.Store.FindCandidatesByIDs(ctx, ids)
	if err != nil {
		return nil, nil
	}

	out := make([]*core.Item, 0, len(pairs))
	for _, p := range pairs {
		it, ok := snapshots[p.ItemID]
		if !ok || it == nil || it.Status != core.StatusAvailable {
			continue
		}
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
