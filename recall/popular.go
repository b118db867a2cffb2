package recall

import (
	"context"
	"strconv"
	"time"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pipeline"
	"github.com/rushteam/unirec/pkg/utils"
)

// Popular 是热门池召回源：回看窗口内按浏览量降序的可售物品，带 TTL 缓存。
//
// 数据来源两条路：
//   - KV 不为空时优先读有序集合热门榜（ZRange，例如由埋点侧 ZIncrBy 维护）
//   - 否则走 InteractionStore 的窗口查询，结果进程内缓存 CacheTTL
type Popular struct {
	Store core.InteractionStore

	// KV / Key 可选的 zset 热门榜，例如 "hot:items"。
	KV  core.KeyValueStore
	Key string

	// LookbackDays 回看窗口（天），<=0 取默认 7。
	LookbackDays int
	// Size 池容量，<=0 取默认 50。
	Size int
	// CacheTTL 缓存时长，<=0 取默认 60s。
	CacheTTL time.Duration

	// Now 便于测试注入时钟。
	Now func() time.Time

	cache cachedPool
}

func (r *Popular) Name() string        { return "recall.popular" }
func (r *Popular) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Popular) params() (lookback, size int, ttl time.Duration) {
	lookback, size, ttl = r.LookbackDays, r.Size, r.CacheTTL
	if lookback <= 0 {
		lookback = 7
	}
	if size <= 0 {
		size = 50
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return
}

func (r *Popular) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Process 实现 Node 接口。
func (r *Popular) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Popular) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}

	// 优先读热门榜 zset
	if r.KV != nil && r.Key != "" {
		if items := r.fromHotList(ctx); len(items) > 0 {
			return items, nil
		}
	}

	lookback, size, ttl := r.params()
	now := r.now()

	items, ok := r.cache.get(now, lookback, size)
	if !ok {
		since := now.AddDate(0, 0, -lookback)
		var err error
		items, err = r.Store.FindPopularSince(ctx, since, size)
		if err != nil {
			// 窗口查询失败按空池降级，不阻塞推荐
			items = nil
		}
		r.cache.put(now, items, ttl, lookback, size)
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

// fromHotList 读 zset 热门榜并批量解析快照，保持榜单顺序。
func (r *Popular) fromHotList(ctx context.Context) []*core.Item {
	_, size, _ := r.params()
	members, err := r.KV.ZRange(ctx, r.Key, 0, int64(size)-1)
	if err != nil || len(members) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	snapshots, err := r.Store.FindCandidatesByIDs(ctx, ids)
	if err != nil {
		return nil
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := snapshots[id]
		if it == nil || it.Status != core.StatusAvailable {
			continue
		}
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out
}
