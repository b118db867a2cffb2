package recall

import (
	"context"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pipeline"
	"github.com/rushteam/unirec/pkg/utils"
)

// Available 是主候选召回源：按创建时间倒序拉取一页可售物品。
// 分页查询失败时退化为全量拉取，保证覆盖率优先于延迟。
// Available 同时实现 Source 和 Node 接口，可以直接挂进 Pipeline。
type Available struct {
	Store core.InteractionStore

	// Limit 候选页大小，<=0 时取默认 500。
	Limit int
}

func (r *Available) Name() string        { return "recall.available" }
func (r *Available) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Available) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Available) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}

	limit := r.Limit
	if limit <= 0 {
		limit = 500
	}

	items, err := r.Store.FindAvailableCandidates(ctx, limit)
	if err != nil {
		// 分页失败退化为全量
		items, err = r.Store.FindAvailableCandidates(ctx, 0)
		if err != nil {
			return nil, nil
		}
	}

	for _, it := range items {
		if it != nil {
			it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		}
	}
	return items, nil
}
