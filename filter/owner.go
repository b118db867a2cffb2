package filter

import (
	"context"

	"github.com/rushteam/unirec/core"
)

// OwnerFilter 过滤请求用户自己发布的物品。
// 匿名请求（UserID 为 0）不做过滤。
type OwnerFilter struct{}

func (f *OwnerFilter) Name() string { return "filter.owner" }

func (f *OwnerFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil || rctx.Anonymous() {
		return false, nil
	}
	return item.OwnerID != 0 && item.OwnerID == rctx.UserID, nil
}

// SeedFilter 用于相似推荐场景：排除种子物品本身，
// 以及种子物品卖家发布的其他物品（避免把同一个卖家的货架推回去）。
type SeedFilter struct{}

func (f *SeedFilter) Name() string { return "filter.seed" }

func (f *SeedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil {
		return false, nil
	}
	if rctx.SeedItemID > 0 && item.ID == rctx.SeedItemID {
		return true, nil
	}
	if rctx.SeedItem != nil && rctx.SeedItem.OwnerID != 0 &&
		item.OwnerID == rctx.SeedItem.OwnerID {
		return true, nil
	}
	return false, nil
}

// StatusFilter 只保留可售状态的物品。
type StatusFilter struct{}

func (f *StatusFilter) Name() string { return "filter.status" }

func (f *StatusFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	return item.Status != core.StatusAvailable, nil
}
