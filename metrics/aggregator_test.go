package metrics

import (
	"context"
	"testing"
	"time"
)

var aggNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newAggregator(t *testing.T) (*Aggregator, *MemoryEventStore) {
	t.Helper()
	store := NewMemoryEventStore()
	return &Aggregator{
		Store: store,
		Now:   func() time.Time { return aggNow },
	}, store
}

func addClick(t *testing.T, store *MemoryEventStore, typ RecommendationType, itemID int64, position int, at time.Time) {
	t.Helper()
	err := store.AppendClick(context.Background(), &ClickEvent{
		ID:        NewEventID(),
		ItemID:    itemID,
		SessionID: "sess",
		Type:      typ,
		Position:  position,
		ClickedAt: at,
	})
	if err != nil {
		t.Fatalf("写入点击事件失败: %v", err)
	}
}

func addImpression(t *testing.T, store *MemoryEventStore, typ RecommendationType, sessionID string, count int, at time.Time) {
	t.Helper()
	err := store.AppendImpression(context.Background(), &ImpressionEvent{
		ID:          NewEventID(),
		SessionID:   sessionID,
		Type:        typ,
		Count:       count,
		ImpressedAt: at,
	})
	if err != nil {
		t.Fatalf("写入曝光事件失败: %v", err)
	}
}

func TestAggregator_CTR(t *testing.T) {
	ctx := context.Background()

	t.Run("无曝光时返回 0", func(t *testing.T) {
		agg, store := newAggregator(t)
		addClick(t, store, TypeForYou, 1, 0, aggNow.Add(-time.Hour))

		got, err := agg.CTR(ctx, time.Time{}, aggNow)
		if err != nil {
			t.Fatalf("CTR 失败: %v", err)
		}
		if got != 0 {
			t.Errorf("无曝光 CTR = %v, 期望 0", got)
		}
	})

	t.Run("两次点击十次曝光", func(t *testing.T) {
		agg, store := newAggregator(t)
		addClick(t, store, TypeForYou, 1, 0, aggNow.Add(-time.Hour))
		addClick(t, store, TypeSimilar, 2, 1, aggNow.Add(-time.Hour))
		addImpression(t, store, TypeForYou, "s1", 6, aggNow.Add(-time.Hour))
		addImpression(t, store, TypeSimilar, "s2", 4, aggNow.Add(-time.Hour))

		got, err := agg.CTR(ctx, time.Time{}, aggNow)
		if err != nil {
			t.Fatalf("CTR 失败: %v", err)
		}
		if got != 20.0 {
			t.Errorf("CTR = %v, 期望 20.0", got)
		}
	})

	t.Run("按类型区分", func(t *testing.T) {
		agg, store := newAggregator(t)
		addClick(t, store, TypeForYou, 1, 0, aggNow.Add(-time.Hour))
		addImpression(t, store, TypeForYou, "s1", 8, aggNow.Add(-time.Hour))
		addImpression(t, store, TypeSimilar, "s2", 100, aggNow.Add(-time.Hour))

		got, err := agg.CTRByType(ctx, TypeForYou, time.Time{}, aggNow)
		if err != nil {
			t.Fatalf("CTRByType 失败: %v", err)
		}
		if got != 12.5 {
			t.Errorf("FOR_YOU CTR = %v, 期望 12.5", got)
		}
	})

	t.Run("区间外事件不计入", func(t *testing.T) {
		agg, store := newAggregator(t)
		start := aggNow.Add(-time.Hour)
		addClick(t, store, TypeForYou, 1, 0, start.Add(-time.Minute))
		addImpression(t, store, TypeForYou, "s1", 10, start.Add(time.Minute))

		got, err := agg.CTR(ctx, start, aggNow)
		if err != nil {
			t.Fatalf("CTR 失败: %v", err)
		}
		if got != 0 {
			t.Errorf("区间外点击不应计入, CTR = %v", got)
		}
	})
}

func TestAggregator_TypeStats(t *testing.T) {
	agg, store := newAggregator(t)
	addClick(t, store, TypeForYou, 1, 0, aggNow.Add(-time.Hour))
	addClick(t, store, TypeForYou, 2, 1, aggNow.Add(-time.Hour))
	addClick(t, store, TypeSimilar, 3, 0, aggNow.Add(-time.Hour))
	addImpression(t, store, TypeForYou, "s1", 10, aggNow.Add(-time.Hour))
	addImpression(t, store, TypeSimilar, "s2", 5, aggNow.Add(-time.Hour))

	stats, err := agg.TypeStats(context.Background(), time.Time{}, aggNow)
	if err != nil {
		t.Fatalf("TypeStats 失败: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("统计条数 = %d, 期望 2", len(stats))
	}
	byType := make(map[RecommendationType]TypeStat, len(stats))
	for _, s := range stats {
		byType[s.Type] = s
	}
	forYou := byType[TypeForYou]
	if forYou.Clicks != 2 || forYou.Impressions != 10 || forYou.CTR != 20.0 {
		t.Errorf("FOR_YOU 统计 = %+v, 期望 clicks=2 impressions=10 ctr=20.0", forYou)
	}
	similar := byType[TypeSimilar]
	if similar.Clicks != 1 || similar.Impressions != 5 || similar.CTR != 20.0 {
		t.Errorf("SIMILAR 统计 = %+v, 期望 clicks=1 impressions=5 ctr=20.0", similar)
	}
}

func TestAggregator_PositionMetrics(t *testing.T) {
	agg, store := newAggregator(t)
	// 位置 0 两次点击, 位置 2 一次; 4 条曝光记录均摊给 2 个位置
	addClick(t, store, TypeForYou, 1, 0, aggNow.Add(-time.Hour))
	addClick(t, store, TypeForYou, 2, 0, aggNow.Add(-time.Hour))
	addClick(t, store, TypeForYou, 3, 2, aggNow.Add(-time.Hour))
	addClick(t, store, TypeSimilar, 4, 1, aggNow.Add(-time.Hour))
	for i := 0; i < 4; i++ {
		addImpression(t, store, TypeForYou, "s", 10, aggNow.Add(-time.Hour))
	}

	got, err := agg.PositionMetrics(context.Background(), TypeForYou)
	if err != nil {
		t.Fatalf("PositionMetrics 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("位置数 = %d, 期望 2", len(got))
	}
	if got[0].Position != 0 || got[0].Clicks != 2 || got[0].Impressions != 2 {
		t.Errorf("位置 0 = %+v, 期望 clicks=2 impressions=2", got[0])
	}
	if got[0].CTR != 100.0 {
		t.Errorf("位置 0 CTR = %v, 期望 100.0", got[0].CTR)
	}
	if got[1].Position != 2 || got[1].Clicks != 1 || got[1].CTR != 50.0 {
		t.Errorf("位置 2 = %+v, 期望 clicks=1 ctr=50.0", got[1])
	}
}

func TestAggregator_PositionMetrics_NoClicks(t *testing.T) {
	agg, store := newAggregator(t)
	addImpression(t, store, TypeForYou, "s", 10, aggNow.Add(-time.Hour))

	got, err := agg.PositionMetrics(context.Background(), TypeForYou)
	if err != nil {
		t.Fatalf("PositionMetrics 失败: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("无点击时应返回空, 实际 %d 条", len(got))
	}
}

func TestAggregator_DailyMetrics(t *testing.T) {
	agg, store := newAggregator(t)
	day1 := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	addClick(t, store, TypeForYou, 1, 0, day2)
	addClick(t, store, TypeSimilar, 2, 0, day2)
	addClick(t, store, TypeForYou, 3, 0, day1)

	got, err := agg.DailyMetrics(context.Background(), day1.Add(-time.Hour))
	if err != nil {
		t.Fatalf("DailyMetrics 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("天数 = %d, 期望 2", len(got))
	}
	if got[0].Date != "2026-03-08" || got[1].Date != "2026-03-09" {
		t.Errorf("日期应升序: %s, %s", got[0].Date, got[1].Date)
	}
	if got[0].ForYouClicks != 1 || got[0].TotalClicks != 1 {
		t.Errorf("3-08 统计 = %+v", got[0])
	}
	if got[1].ForYouClicks != 1 || got[1].SimilarClicks != 1 || got[1].TotalClicks != 2 {
		t.Errorf("3-09 统计 = %+v", got[1])
	}
}

func TestAggregator_MostClicked(t *testing.T) {
	agg, store := newAggregator(t)
	since := aggNow.Add(-24 * time.Hour)
	for i := 0; i < 3; i++ {
		addClick(t, store, TypeForYou, 7, 0, aggNow.Add(-time.Hour))
	}
	addClick(t, store, TypeForYou, 5, 0, aggNow.Add(-time.Hour))
	addClick(t, store, TypeForYou, 9, 0, aggNow.Add(-time.Hour))
	addClick(t, store, TypeSimilar, 3, 0, aggNow.Add(-time.Hour))

	got, err := agg.MostClicked(context.Background(), TypeForYou, since, 2)
	if err != nil {
		t.Fatalf("MostClicked 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("条数 = %d, 期望 2", len(got))
	}
	if got[0].ItemID != 7 || got[0].Clicks != 3 {
		t.Errorf("榜首 = %+v, 期望 item=7 clicks=3", got[0])
	}
	// 同票按 ID 升序
	if got[1].ItemID != 5 || got[1].Clicks != 1 {
		t.Errorf("第二名 = %+v, 期望 item=5 clicks=1", got[1])
	}
}

func TestAggregator_UniqueSessions(t *testing.T) {
	agg, store := newAggregator(t)
	addImpression(t, store, TypeForYou, "s1", 10, aggNow.Add(-time.Hour))
	addImpression(t, store, TypeForYou, "s1", 10, aggNow.Add(-time.Minute))
	addImpression(t, store, TypeSimilar, "s2", 6, aggNow.Add(-time.Hour))

	got, err := agg.UniqueSessions(context.Background(), time.Time{}, aggNow)
	if err != nil {
		t.Fatalf("UniqueSessions 失败: %v", err)
	}
	if got != 2 {
		t.Errorf("会话数 = %d, 期望 2", got)
	}
}

func TestAggregator_Metrics(t *testing.T) {
	agg, store := newAggregator(t)
	start := aggNow.Add(-24 * time.Hour)
	addClick(t, store, TypeForYou, 1, 0, aggNow.Add(-time.Hour))
	addClick(t, store, TypeForYou, 2, 0, aggNow.Add(-time.Hour))
	addClick(t, store, TypeSimilar, 3, 0, aggNow.Add(-time.Hour))

	got, err := agg.Metrics(context.Background(), start, aggNow)
	if err != nil {
		t.Fatalf("Metrics 失败: %v", err)
	}
	if got.TotalClicks != 3 {
		t.Errorf("总点击 = %d, 期望 3", got.TotalClicks)
	}
	if got.ClicksByType[TypeForYou] != 2 || got.ClicksByType[TypeSimilar] != 1 {
		t.Errorf("分类型点击 = %v", got.ClicksByType)
	}
	if len(got.DailyMetrics) != 1 {
		t.Errorf("日别明细条数 = %d, 期望 1", len(got.DailyMetrics))
	}
}
