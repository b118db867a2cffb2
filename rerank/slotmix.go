package rerank

import (
	"context"
	"math"
	"math/rand"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pipeline"
	"github.com/rushteam/unirec/pkg/utils"
	"github.com/rushteam/unirec/recall"
)

// SlotMixNode 按槽位比例混排：个性化 / 热门 / 新鲜 / 随机探索。
// 输入应当是已经按分数降序排好的个性化候选（Rank 节点的输出），
// 热门池和新鲜池由各自的召回源提供。
//
// 槽位分配规则：
//  1. 探索槽 = floor(limit * epsilon)，受 ExploreSize 与 limit 双重上限。
//  2. 其余槽位按归一化后的三路比例 floor 分配，取整亏空补给个性化。
//  3. 三路比例之和 <= 0 时退化为纯个性化截断。
//  4. 探索槽从新鲜池随机抽取，新鲜池为空时从个性化候选抽取。
//  5. 任何槽位填不满时，余量回填个性化候选。
//
// 每个入选物品会打上 slot label（personalized / popular / fresh / explore）。
type SlotMixNode struct {
	// Size 混排后的结果条数，<=0 返回空列表。
	Size int

	// PersonalizedRatio / PopularRatio / FreshRatio 三路槽位比例，
	// 全零时（未配置）默认 1.0 / 0 / 0。
	PersonalizedRatio float64
	PopularRatio      float64
	FreshRatio        float64

	// ExploreEpsilon 探索比例，ExploreSize 探索槽上限（<=0 取默认 2）。
	ExploreEpsilon float64
	ExploreSize    int

	// Popular / Fresh 热门与新鲜候选池来源，nil 按空池处理。
	Popular recall.Source
	Fresh   recall.Source

	// Rand 探索抽样随机源，nil 使用包级随机。
	Rand *rand.Rand
}

func (n *SlotMixNode) Name() string        { return "rerank.slotmix" }
func (n *SlotMixNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *SlotMixNode) ratios() (p, pop, fresh float64) {
	p, pop, fresh = n.PersonalizedRatio, n.PopularRatio, n.FreshRatio
	if p == 0 && pop == 0 && fresh == 0 {
		p = 1.0
	}
	return
}

func (n *SlotMixNode) exploreCap() int {
	if n.ExploreSize <= 0 {
		return 2
	}
	return n.ExploreSize
}

func (n *SlotMixNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.Size
	if limit <= 0 {
		return nil, nil
	}

	popular := n.pool(ctx, rctx, n.Popular)
	fresh := n.pool(ctx, rctx, n.Fresh)

	pRatio, popRatio, freshRatio := n.ratios()
	ratioSum := pRatio + popRatio + freshRatio
	if ratioSum <= 0 {
		if len(items) > limit {
			return items[:limit], nil
		}
		return items, nil
	}

	// 比例归一化
	pRatio /= ratioSum
	popRatio /= ratioSum
	freshRatio /= ratioSum

	// 探索槽数量：epsilon 比例，受上限约束
	exploreTarget := int(math.Floor(float64(limit) * n.ExploreEpsilon))
	if cap := n.exploreCap(); exploreTarget > cap {
		exploreTarget = cap
	}
	if exploreTarget > limit {
		exploreTarget = limit
	}

	// 剩余槽位按比例分配
	remaining := limit - exploreTarget
	if remaining < 0 {
		remaining = 0
	}
	personalizedTarget := int(math.Floor(float64(remaining) * pRatio))
	popularTarget := int(math.Floor(float64(remaining) * popRatio))
	freshTarget := int(math.Floor(float64(remaining) * freshRatio))

	// 取整亏空补给个性化
	if deficit := remaining - personalizedTarget - popularTarget - freshTarget; deficit > 0 {
		personalizedTarget += deficit
	}

	sel := &selection{
		seen:  make(map[int64]struct{}, limit),
		limit: limit,
	}

	sel.fill(items, personalizedTarget, "personalized")
	sel.fill(popular, popularTarget, "popular")
	sel.fill(fresh, freshTarget, "fresh")

	if exploreTarget > 0 && len(sel.out) < limit {
		if room := limit - len(sel.out); exploreTarget > room {
			exploreTarget = room
		}
		explorePool := fresh
		if len(explorePool) == 0 {
			explorePool = items
		}
		sel.fill(n.shuffle(explorePool), exploreTarget, "explore")
	}

	// 余量回填个性化
	if len(sel.out) < limit {
		sel.fill(items, limit-len(sel.out), "personalized")
	}

	return sel.out, nil
}

// pool 拉取一个候选池，来源缺失或出错按空池处理。
func (n *SlotMixNode) pool(
	ctx context.Context,
	rctx *core.RecommendContext,
	src recall.Source,
) []*core.Item {
	if src == nil {
		return nil
	}
	items, err := src.Recall(ctx, rctx)
	if err != nil {
		return nil
	}
	return items
}

func (n *SlotMixNode) shuffle(pool []*core.Item) []*core.Item {
	shuffled := make([]*core.Item, len(pool))
	copy(shuffled, pool)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if n.Rand != nil {
		n.Rand.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}
	return shuffled
}

// selection 维护去重后的入选列表，按入选顺序保序。
type selection struct {
	out   []*core.Item
	seen  map[int64]struct{}
	limit int
}

func (s *selection) fill(pool []*core.Item, target int, slot string) {
	if target <= 0 {
		return
	}
	added := 0
	for _, it := range pool {
		if len(s.out) >= s.limit {
			return
		}
		if it == nil {
			continue
		}
		if _, ok := s.seen[it.ID]; ok {
			continue
		}
		s.seen[it.ID] = struct{}{}
		it.PutLabel("slot", utils.Label{Value: slot, Source: "rerank.slotmix"})
		s.out = append(s.out, it)
		added++
		if added >= target {
			return
		}
	}
}
