package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pkg/utils"
)

// MemoryInteractionStore 是 core.InteractionStore 的内存实现。
// 用于测试、开发和单机部署；它同时实现 metrics.ViewSink，
// 浏览事件写入后立即参与共同浏览统计。
type MemoryInteractionStore struct {
	mu    sync.RWMutex
	items map[int64]*core.Item
	// interactions 按写入顺序追加，查询时过滤排序。
	interactions []core.Interaction
}

func NewMemoryInteractionStore() *MemoryInteractionStore {
	return &MemoryInteractionStore{
		items: make(map[int64]*core.Item),
	}
}

var _ core.InteractionStore = (*MemoryInteractionStore)(nil)

// PutItem 写入或覆盖一个候选快照。
func (s *MemoryInteractionStore) PutItem(item *core.Item) {
	if item == nil {
		return
	}
	s.mu.Lock()
	s.items[item.ID] = item
	s.mu.Unlock()
}

// AddInteraction 追加一条行为记录。
func (s *MemoryInteractionStore) AddInteraction(r core.Interaction) {
	s.mu.Lock()
	s.interactions = append(s.interactions, r)
	s.mu.Unlock()
}

// AppendView 实现 metrics.ViewSink：浏览事件回流为协同信号。
func (s *MemoryInteractionStore) AppendView(_ context.Context, userID, itemID int64, at time.Time) error {
	s.AddInteraction(core.Interaction{
		UserID:    userID,
		ItemID:    itemID,
		Kind:      core.KindView,
		Timestamp: at,
	})
	return nil
}

// cloneItem 返回快照副本。Labels 在请求内会被召回/混排节点改写，
// 不能把存储内的对象直接交出去。
func cloneItem(it *core.Item) *core.Item {
	if it == nil {
		return nil
	}
	c := *it
	c.Labels = make(map[string]utils.Label, len(it.Labels))
	for k, v := range it.Labels {
		c.Labels[k] = v
	}
	return &c
}

func (s *MemoryInteractionStore) FindAvailableCandidates(_ context.Context, limit int) ([]*core.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Item, 0, len(s.items))
	for _, it := range s.items {
		if it.Status == core.StatusAvailable {
			out = append(out, cloneItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryInteractionStore) FindCandidateByID(_ context.Context, itemID int64) (*core.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItem(s.items[itemID]), nil
}

func (s *MemoryInteractionStore) FindCandidatesByIDs(_ context.Context, itemIDs []int64) (map[int64]*core.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]*core.Item, len(itemIDs))
	for _, id := range itemIDs {
		if it, ok := s.items[id]; ok {
			out[id] = cloneItem(it)
		}
	}
	return out, nil
}

func (s *MemoryInteractionStore) RecentInteractionHistory(
	_ context.Context,
	userID int64,
	maxClicks, maxWishlists, maxViews int,
) (*core.InteractionHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := &core.InteractionHistory{}
	for _, r := range s.interactions {
		if r.UserID != userID {
			continue
		}
		switch r.Kind {
		case core.KindClick:
			h.Clicks = append(h.Clicks, r)
		case core.KindWishlist:
			h.Wishlists = append(h.Wishlists, r)
		case core.KindView:
			h.Views = append(h.Views, r)
		}
	}

	byRecency := func(rs []core.Interaction) {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Timestamp.After(rs[j].Timestamp) })
	}
	byRecency(h.Clicks)
	byRecency(h.Wishlists)
	byRecency(h.Views)

	if maxClicks > 0 && len(h.Clicks) > maxClicks {
		h.Clicks = h.Clicks[:maxClicks]
	}
	if maxWishlists > 0 && len(h.Wishlists) > maxWishlists {
		h.Wishlists = h.Wishlists[:maxWishlists]
	}
	if maxViews > 0 && len(h.Views) > maxViews {
		h.Views = h.Views[:maxViews]
	}
	return h, nil
}

func (s *MemoryInteractionStore) UserViewCount(_ context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.interactions {
		if r.Kind == core.KindView && r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryInteractionStore) TotalViewCount(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.interactions {
		if r.Kind == core.KindView {
			n++
		}
	}
	return n, nil
}

// CoViewedByUser 口味相近用户的共同浏览：
// 先找出与 userID 看过同一批物品的其他用户，
// 再统计这些用户看过、而 userID 没看过的物品的共现次数。
func (s *MemoryInteractionStore) CoViewedByUser(_ context.Context, userID int64, limit int) ([]core.CoView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mine := make(map[int64]struct{})
	for _, r := range s.interactions {
		if r.Kind == core.KindView && r.UserID == userID {
			mine[r.ItemID] = struct{}{}
		}
	}
	if len(mine) == 0 {
		return nil, nil
	}

	coUsers := make(map[int64]struct{})
	for _, r := range s.interactions {
		if r.Kind != core.KindView || r.UserID == userID || r.UserID == 0 {
			continue
		}
		if _, ok := mine[r.ItemID]; ok {
			coUsers[r.UserID] = struct{}{}
		}
	}

	counts := make(map[int64]int64)
	for _, r := range s.interactions {
		if r.Kind != core.KindView {
			continue
		}
		if _, ok := coUsers[r.UserID]; !ok {
			continue
		}
		if _, ok := mine[r.ItemID]; ok {
			continue
		}
		counts[r.ItemID]++
	}
	return s.rankCoViews(counts, limit), nil
}

// CoViewedByItem 看过该物品的用户还看了什么。
func (s *MemoryInteractionStore) CoViewedByItem(_ context.Context, itemID int64, limit int) ([]core.CoView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	viewers := make(map[int64]struct{})
	for _, r := range s.interactions {
		if r.Kind == core.KindView && r.ItemID == itemID && r.UserID != 0 {
			viewers[r.UserID] = struct{}{}
		}
	}
	if len(viewers) == 0 {
		return nil, nil
	}

	counts := make(map[int64]int64)
	for _, r := range s.interactions {
		if r.Kind != core.KindView || r.ItemID == itemID {
			continue
		}
		if _, ok := viewers[r.UserID]; ok {
			counts[r.ItemID]++
		}
	}
	return s.rankCoViews(counts, limit), nil
}

// rankCoViews 过滤掉不可售物品后按共现次数降序。调用方需持有读锁。
func (s *MemoryInteractionStore) rankCoViews(counts map[int64]int64, limit int) []core.CoView {
	out := make([]core.CoView, 0, len(counts))
	for id, n := range counts {
		if it, ok := s.items[id]; !ok || it.Status != core.StatusAvailable {
			continue
		}
		out = append(out, core.CoView{ItemID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ItemID < out[j].ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemoryInteractionStore) FindPopularSince(_ context.Context, since time.Time, limit int) ([]*core.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make(map[int64]int64)
	for _, r := range s.interactions {
		if r.Kind == core.KindView {
			views[r.ItemID]++
		}
	}

	out := make([]*core.Item, 0, len(s.items))
	for _, it := range s.items {
		if it.Status != core.StatusAvailable || it.CreatedAt.Before(since) {
			continue
		}
		out = append(out, cloneItem(it))
	}
	sort.Slice(out, func(i, j int) bool {
		if views[out[i].ID] != views[out[j].ID] {
			return views[out[i].ID] > views[out[j].ID]
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryInteractionStore) FindFreshSince(_ context.Context, since time.Time, limit int) ([]*core.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Item, 0, len(s.items))
	for _, it := range s.items {
		if it.Status != core.StatusAvailable || it.CreatedAt.Before(since) {
			continue
		}
		out = append(out, cloneItem(it))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
