package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/store"
)

var recNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestRecorder_RecordClick(t *testing.T) {
	items := store.NewMemoryInteractionStore()
	items.PutItem(&core.Item{ID: 1, Status: core.StatusAvailable, CreatedAt: recNow})

	events := NewMemoryEventStore()
	r := NewRecorder(RecorderConfig{
		Events: events,
		Items:  items,
		Now:    func() time.Time { return recNow },
	})

	r.RecordClick(ClickInput{ItemID: 1, UserID: 10, SessionID: "s1", Type: TypeForYou, Position: 2, Slot: "personalized"})
	// 不存在的物品被丢弃
	r.RecordClick(ClickInput{ItemID: 999, UserID: 10, SessionID: "s1", Type: TypeForYou})
	// 入参非法直接拒绝
	r.RecordClick(ClickInput{ItemID: 0, Type: TypeForYou})
	r.RecordClick(ClickInput{ItemID: 1, Type: ""})
	r.Close()

	clicks, _ := events.ClicksBetween(context.Background(), time.Time{}, time.Time{})
	if len(clicks) != 1 {
		t.Fatalf("落库点击数 = %d, 期望 1", len(clicks))
	}
	ev := clicks[0]
	if ev.ItemID != 1 || ev.UserID != 10 || ev.Type != TypeForYou || ev.Position != 2 {
		t.Errorf("点击事件 = %+v", ev)
	}
	if ev.Slot != "personalized" {
		t.Errorf("slot = %q, 期望 personalized", ev.Slot)
	}
	if !ev.ClickedAt.Equal(recNow) {
		t.Errorf("点击时间 = %v, 期望 %v", ev.ClickedAt, recNow)
	}
	if ev.ID == "" {
		t.Error("事件应带生成的 ID")
	}
}

func TestRecorder_RecordImpression_Dedup(t *testing.T) {
	events := NewMemoryEventStore()
	dedup := NewMemoryDeduper()
	dedup.Now = func() time.Time { return recNow }

	r := NewRecorder(RecorderConfig{
		Events: events,
		Dedup:  dedup,
		Now:    func() time.Time { return recNow },
	})

	// 同会话同类型在窗口内重复上报，只应落一条
	r.RecordImpression(ImpressionInput{SessionID: "s1", Type: TypeForYou, Count: 10})
	r.RecordImpression(ImpressionInput{SessionID: "s1", Type: TypeForYou, Count: 10})
	// 不同类型不互斥
	r.RecordImpression(ImpressionInput{SessionID: "s1", Type: TypeSimilar, Count: 6})
	// 非法入参
	r.RecordImpression(ImpressionInput{SessionID: "  ", Type: TypeForYou, Count: 10})
	r.RecordImpression(ImpressionInput{SessionID: "s2", Type: TypeForYou, Count: 0})
	r.Close()

	imps, _ := events.ImpressionsBetween(context.Background(), time.Time{}, time.Time{})
	if len(imps) != 2 {
		t.Fatalf("落库曝光数 = %d, 期望 2", len(imps))
	}
	byType := make(map[RecommendationType]*ImpressionEvent, len(imps))
	for _, ev := range imps {
		byType[ev.Type] = ev
	}
	if byType[TypeForYou] == nil || byType[TypeForYou].Count != 10 {
		t.Errorf("FOR_YOU 曝光 = %+v", byType[TypeForYou])
	}
	if byType[TypeSimilar] == nil || byType[TypeSimilar].Count != 6 {
		t.Errorf("SIMILAR 曝光 = %+v", byType[TypeSimilar])
	}
}

func TestRecorder_RecordView(t *testing.T) {
	sink := store.NewMemoryInteractionStore()
	r := NewRecorder(RecorderConfig{
		Events: NewMemoryEventStore(),
		Views:  sink,
		Now:    func() time.Time { return recNow },
	})

	r.RecordView(10, 1)
	r.RecordView(10, 1)
	r.RecordView(10, 0) // 非法物品被忽略
	r.Close()

	total, err := sink.TotalViewCount(context.Background())
	if err != nil {
		t.Fatalf("TotalViewCount 失败: %v", err)
	}
	if total != 2 {
		t.Errorf("回流浏览数 = %d, 期望 2", total)
	}
}
