package rerank

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/recall"
)

// staticSource 是固定返回的召回源。
type staticSource struct {
	name  string
	items []*core.Item
	err   error
}

func (s *staticSource) Name() string { return s.name }
func (s *staticSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	return s.items, s.err
}

var _ recall.Source = (*staticSource)(nil)

func slotOf(it *core.Item) string {
	return it.Labels["slot"].Value
}

func TestSlotMixNode_PersonalizedOnly(t *testing.T) {
	ctx := context.Background()
	node := &SlotMixNode{Size: 3} // 比例未配置 → 默认 1.0/0/0

	out, err := node.Process(ctx, nil, makeItems(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, 期望 3", len(out))
	}
	for i, id := range []int64{1, 2, 3} {
		if out[i].ID != id {
			t.Errorf("位置 %d = %d, 期望 %d", i, out[i].ID, id)
		}
		if slotOf(out[i]) != "personalized" {
			t.Errorf("slot = %q, 期望 personalized", slotOf(out[i]))
		}
	}
}

func TestSlotMixNode_RatioAllocation(t *testing.T) {
	ctx := context.Background()
	node := &SlotMixNode{
		Size:              10,
		PersonalizedRatio: 0.6,
		PopularRatio:      0.2,
		FreshRatio:        0.2,
		Popular:           &staticSource{name: "popular", items: makeItems(101, 102, 103)},
		Fresh:             &staticSource{name: "fresh", items: makeItems(201, 202, 203)},
	}

	out, err := node.Process(ctx, nil, makeItems(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("len = %d, 期望 10", len(out))
	}

	counts := map[string]int{}
	for _, it := range out {
		counts[slotOf(it)]++
	}
	if counts["personalized"] != 6 || counts["popular"] != 2 || counts["fresh"] != 2 {
		t.Errorf("槽位分配 = %v, 期望 personalized:6 popular:2 fresh:2", counts)
	}
}

func TestSlotMixNode_DeficitToPersonalized(t *testing.T) {
	ctx := context.Background()
	// 三路比例归一化后 floor 会有取整亏空，亏空须补给个性化
	node := &SlotMixNode{
		Size:              10,
		PersonalizedRatio: 1.0,
		PopularRatio:      1.0,
		FreshRatio:        1.0,
		Popular:           &staticSource{name: "popular", items: makeItems(101, 102, 103, 104)},
		Fresh:             &staticSource{name: "fresh", items: makeItems(201, 202, 203, 204)},
	}

	out, err := node.Process(ctx, nil, makeItems(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("len = %d, 期望 10", len(out))
	}
	counts := map[string]int{}
	for _, it := range out {
		counts[slotOf(it)]++
	}
	// floor(10/3)=3 每路，亏空 1 补给个性化 → 4/3/3
	if counts["personalized"] != 4 || counts["popular"] != 3 || counts["fresh"] != 3 {
		t.Errorf("槽位分配 = %v, 期望 personalized:4 popular:3 fresh:3", counts)
	}
}

func TestSlotMixNode_DedupAndBackfill(t *testing.T) {
	ctx := context.Background()
	// 热门池与个性化候选重叠，填不满的余量回填个性化
	node := &SlotMixNode{
		Size:              5,
		PersonalizedRatio: 0.6,
		PopularRatio:      0.4,
		Popular:           &staticSource{name: "popular", items: makeItems(1, 2)}, // 与个性化完全重叠
	}

	out, err := node.Process(ctx, nil, makeItems(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("len = %d, 期望 5", len(out))
	}
	seen := map[int64]bool{}
	for _, it := range out {
		if seen[it.ID] {
			t.Fatalf("物品 %d 重复入选", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestSlotMixNode_Explore(t *testing.T) {
	ctx := context.Background()
	node := &SlotMixNode{
		Size:              10,
		PersonalizedRatio: 1.0,
		ExploreEpsilon:    0.5, // floor(10*0.5)=5，受 ExploreSize 上限 2 约束
		ExploreSize:       2,
		Fresh:             &staticSource{name: "fresh", items: makeItems(201, 202, 203)},
		Rand:              rand.New(rand.NewSource(1)),
	}

	out, err := node.Process(ctx, nil, makeItems(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("len = %d, 期望 10", len(out))
	}
	counts := map[string]int{}
	for _, it := range out {
		counts[slotOf(it)]++
	}
	if counts["explore"] != 2 {
		t.Errorf("探索槽 = %d, 期望 2（受上限约束）", counts["explore"])
	}
	if counts["personalized"] != 8 {
		t.Errorf("个性化槽 = %d, 期望 8", counts["personalized"])
	}
}

func TestSlotMixNode_ZeroRatios(t *testing.T) {
	ctx := context.Background()
	// 显式负比例之和 <= 0：退化为纯个性化截断
	node := &SlotMixNode{
		Size:              2,
		PersonalizedRatio: -1.0,
		PopularRatio:      0.5,
		FreshRatio:        0.5,
	}
	out, err := node.Process(ctx, nil, makeItems(1, 2, 3))
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 2 {
		t.Errorf("比例和为 0 应退化为截断, got %v", out)
	}
}

func TestSlotMixNode_SizeZero(t *testing.T) {
	out, err := (&SlotMixNode{}).Process(context.Background(), nil, makeItems(1, 2))
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Size 为 0 应返回空列表")
	}
}
