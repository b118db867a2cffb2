package recall

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/store"
)

var recallNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) *store.MemoryInteractionStore {
	t.Helper()
	s := store.NewMemoryInteractionStore()
	for i := 1; i <= 5; i++ {
		s.PutItem(&core.Item{
			ID:        int64(i),
			Status:    core.StatusAvailable,
			CreatedAt: recallNow.AddDate(0, 0, -i),
		})
	}
	s.PutItem(&core.Item{ID: 6, Status: core.StatusCompleted, CreatedAt: recallNow})
	return s
}

func recallIDs(items []*core.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestAvailable_Recall(t *testing.T) {
	s := seedStore(t)
	r := &Available{Store: s, Limit: 3}

	got, err := r.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("召回数 = %d, 期望 3", len(got))
	}
	want := []int64{1, 2, 3}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("召回顺序 = %v, 期望 %v", recallIDs(got), want)
		}
	}
	if lbl, ok := got[0].Labels["recall_source"]; !ok || lbl.Value != "recall.available" {
		t.Errorf("recall_source 标签 = %v", got[0].Labels["recall_source"])
	}
}

func TestPopular_Recall_HotList(t *testing.T) {
	s := seedStore(t)
	kv := store.NewMemoryStore()
	defer kv.Close()

	ctx := context.Background()
	// 榜单: 3 > 1 > 6(已售出, 应跳过)
	_ = kv.ZAdd(ctx, "hot:items", 10, "3")
	_ = kv.ZAdd(ctx, "hot:items", 5, "1")
	_ = kv.ZAdd(ctx, "hot:items", 3, "6")
	_ = kv.ZAdd(ctx, "hot:items", 1, "not-a-number")

	r := &Popular{Store: s, KV: kv, Key: "hot:items", Now: func() time.Time { return recallNow }}
	got, err := r.Recall(ctx, nil)
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	want := []int64{3, 1}
	if len(got) != len(want) {
		t.Fatalf("热门召回 = %v, 期望 %v", recallIDs(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("热门顺序 = %v, 期望 %v", recallIDs(got), want)
		}
	}
}

func TestPopular_Recall_WindowFallback(t *testing.T) {
	s := seedStore(t)
	// 物品 3 浏览两次, 物品 1 一次
	for _, v := range []struct{ user, item int64 }{{10, 3}, {20, 3}, {10, 1}} {
		s.AddInteraction(core.Interaction{
			UserID: v.user, ItemID: v.item,
			Kind: core.KindView, Timestamp: recallNow.Add(-time.Hour),
		})
	}

	r := &Popular{Store: s, LookbackDays: 7, Size: 2, Now: func() time.Time { return recallNow }}
	got, err := r.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 1 {
		t.Fatalf("热门池 = %v, 期望 [3 1]", recallIDs(got))
	}

	// TTL 内命中缓存: 新增浏览不改变结果
	for i := 0; i < 5; i++ {
		s.AddInteraction(core.Interaction{
			UserID: 30, ItemID: 2,
			Kind: core.KindView, Timestamp: recallNow,
		})
	}
	got, _ = r.Recall(context.Background(), nil)
	if got[0].ID != 3 {
		t.Errorf("TTL 内应命中缓存, 实际榜首 %d", got[0].ID)
	}

	// 缓存过期后重算
	r.Now = func() time.Time { return recallNow.Add(2 * time.Minute) }
	got, _ = r.Recall(context.Background(), nil)
	if len(got) == 0 || got[0].ID != 2 {
		t.Errorf("缓存过期后应重算, 实际 %v", recallIDs(got))
	}
}

func TestFresh_Recall(t *testing.T) {
	s := seedStore(t)
	r := &Fresh{Store: s, WindowDays: 3, Size: 10, Now: func() time.Time { return recallNow }}

	got, err := r.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	// 窗口 3 天内: 物品 1、2、3 (边界), 按上架时间倒序
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("新鲜池 = %v, 期望 %v", recallIDs(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("新鲜顺序 = %v, 期望 %v", recallIDs(got), want)
		}
	}
	if lbl := got[0].Labels["recall_source"]; lbl.Value != "recall.fresh" {
		t.Errorf("recall_source = %v, 期望 recall.fresh", lbl)
	}
}

func TestCoViewed_Recall(t *testing.T) {
	s := seedStore(t)
	// 看过 1 的用户还看了 2(两人)和 3(一人)
	for _, v := range []struct{ user, item int64 }{
		{20, 1}, {20, 2}, {30, 1}, {30, 2}, {30, 3},
	} {
		s.AddInteraction(core.Interaction{
			UserID: v.user, ItemID: v.item,
			Kind: core.KindView, Timestamp: recallNow.Add(-time.Hour),
		})
	}

	r := &CoViewed{Store: s}
	got, err := r.Recall(context.Background(), &core.RecommendContext{SeedItemID: 1})
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("协同召回 = %v, 期望 [2 3]", recallIDs(got))
	}

	t.Run("无种子返回空", func(t *testing.T) {
		got, err := r.Recall(context.Background(), &core.RecommendContext{})
		if err != nil || len(got) != 0 {
			t.Errorf("无种子应返回空: (%v, %v)", recallIDs(got), err)
		}
	})
}

func TestFanout_Process(t *testing.T) {
	s := seedStore(t)
	f := &Fanout{
		Sources: []Source{
			&Available{Store: s, Limit: 2}, // 1, 2
			&Fresh{Store: s, WindowDays: 3, Size: 10, Now: func() time.Time { return recallNow }}, // 1, 2, 3
		},
		Dedup: true, // 默认 first 策略: 按 ID 去重保留首个
	}

	got, err := f.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	seen := make(map[int64]int)
	for _, it := range got {
		seen[it.ID]++
	}
	if len(seen) != 3 {
		t.Fatalf("并发召回合并 = %v, 期望覆盖 3 个物品", recallIDs(got))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("物品 %d 出现 %d 次, 应去重", id, n)
		}
	}

	t.Run("union 不去重", func(t *testing.T) {
		f := &Fanout{
			Sources: []Source{
				&Available{Store: s, Limit: 2},
				&Available{Store: s, Limit: 2},
			},
			MergeStrategy: "union",
		}
		got, err := f.Process(context.Background(), &core.RecommendContext{}, nil)
		if err != nil {
			t.Fatalf("Process 失败: %v", err)
		}
		if len(got) != 4 {
			t.Errorf("union 合并 = %d 条, 期望 4", len(got))
		}
	})
}
