package metrics

import (
	"context"
	"sync"
	"time"
)

// MemoryEventStore 是 EventStore 的内存实现，线程安全。
// 适合开发、测试和单机部署。
type MemoryEventStore struct {
	mu          sync.RWMutex
	clicks      []*ClickEvent
	impressions []*ImpressionEvent
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

func (s *MemoryEventStore) AppendClick(_ context.Context, ev *ClickEvent) error {
	if ev == nil {
		return nil
	}
	c := *ev
	s.mu.Lock()
	s.clicks = append(s.clicks, &c)
	s.mu.Unlock()
	return nil
}

func (s *MemoryEventStore) AppendImpression(_ context.Context, ev *ImpressionEvent) error {
	if ev == nil {
		return nil
	}
	imp := *ev
	s.mu.Lock()
	s.impressions = append(s.impressions, &imp)
	s.mu.Unlock()
	return nil
}

func (s *MemoryEventStore) ClicksBetween(
	_ context.Context,
	start, end time.Time,
) ([]*ClickEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ClickEvent, 0, len(s.clicks))
	for _, ev := range s.clicks {
		if inRange(ev.ClickedAt, start, end) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *MemoryEventStore) ImpressionsBetween(
	_ context.Context,
	start, end time.Time,
) ([]*ImpressionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ImpressionEvent, 0, len(s.impressions))
	for _, ev := range s.impressions {
		if inRange(ev.ImpressedAt, start, end) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// inRange 判断 t 是否落在 [start, end) 内，start 零值表示不限起点。
func inRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && !t.Before(end) {
		return false
	}
	return true
}
