package core

import (
	"math"
	"time"
)

// InteractionKind 是用户行为类型，带有多行为推荐的差异化权重。
// 点击 > 收藏 > 浏览，权重表达行为背后的兴趣强度。
type InteractionKind string

const (
	KindClick    InteractionKind = "click"    // 点击推荐位，最强信号
	KindWishlist InteractionKind = "wishlist" // 加入收藏
	KindView     InteractionKind = "view"     // 浏览详情页，最弱信号
)

// BaseWeight 返回行为的基础权重。未知类型按浏览处理。
func (k InteractionKind) BaseWeight() float64 {
	switch k {
	case KindClick:
		return 1.0
	case KindWishlist:
		return 0.7
	case KindView:
		return 0.3
	default:
		return 0.3
	}
}

// DecayedWeight 返回施加时间衰减后的权重。
// 阈值（thresholdDays）内不衰减，超出后按 w·exp(-λ·(days-threshold)) 指数衰减。
func (k InteractionKind) DecayedWeight(daysSince int64, lambda float64, thresholdDays int) float64 {
	w := k.BaseWeight()
	if daysSince <= int64(thresholdDays) {
		return w
	}
	return w * math.Exp(-lambda*float64(daysSince-int64(thresholdDays)))
}

// Interaction 是一条只读的行为记录。UserID 为 0 表示匿名行为。
type Interaction struct {
	UserID    int64
	ItemID    int64
	Kind      InteractionKind
	Timestamp time.Time
}

// DecayedWeight 返回该记录在 now 时刻的衰减权重。
func (r Interaction) DecayedWeight(lambda float64, thresholdDays int, now time.Time) float64 {
	days := int64(now.Sub(r.Timestamp).Hours() / 24)
	return r.Kind.DecayedWeight(days, lambda, thresholdDays)
}

// InteractionHistory 是某个用户的行为束，按行为类型分档。
// 按需构建、请求内有效，引擎不持久化它。
type InteractionHistory struct {
	Clicks    []Interaction
	Wishlists []Interaction
	Views     []Interaction
}

// All 返回合并视图，顺序为 点击、收藏、浏览。
func (h *InteractionHistory) All() []Interaction {
	if h == nil {
		return nil
	}
	all := make([]Interaction, 0, h.TotalCount())
	all = append(all, h.Clicks...)
	all = append(all, h.Wishlists...)
	all = append(all, h.Views...)
	return all
}

// TotalCount 返回行为总数。
func (h *InteractionHistory) TotalCount() int {
	if h == nil {
		return 0
	}
	return len(h.Clicks) + len(h.Wishlists) + len(h.Views)
}

// ItemIDs 返回去重后的行为物品 ID 集合。
func (h *InteractionHistory) ItemIDs() map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, r := range h.All() {
		ids[r.ItemID] = struct{}{}
	}
	return ids
}
