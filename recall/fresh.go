package recall

import (
	"context"
	"time"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pipeline"
	"github.com/rushteam/unirec/pkg/utils"
)

// Fresh 是新鲜池召回源：窗口内最新上架的可售物品，带 TTL 缓存。
// slot 混合的 fresh / explore 槽位从这里取候选。
type Fresh struct {
	Store core.InteractionStore

	// WindowDays 新鲜窗口（天），<=0 取默认 2。
	WindowDays int
	// Size 池容量，<=0 取默认 50。
	Size int
	// CacheTTL 缓存时长，<=0 取默认 60s。
	CacheTTL time.Duration

	Now func() time.Time

	cache cachedPool
}

func (r *Fresh) Name() string        { return "recall.fresh" }
func (r *Fresh) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Fresh) params() (window, size int, ttl time.Duration) {
	window, size, ttl = r.WindowDays, r.Size, r.CacheTTL
	if window <= 0 {
		window = 2
	}
	if size <= 0 {
		size = 50
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return
}

func (r *Fresh) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Process 实现 Node 接口。
func (r *Fresh) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Fresh) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}

	window, size, ttl := r.params()
	now := r.now()

	items, ok := r.cache.get(now, window, size)
	if !ok {
		since := now.AddDate(0, 0, -window)
		var err error
		items, err = r.Store.FindFreshSince(ctx, since, size)
		if err != nil {
			items = nil
		}
		r.cache.put(now, items, ttl, window, size)
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
