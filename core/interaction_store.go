package core

import (
	"context"
	"time"
)

// CoView 是一条共同浏览统计：看过同一批物品的其他用户还看了 ItemID，共 Count 次。
type CoView struct {
	ItemID int64
	Count  int64
}

// InteractionStore 是行为数据源的领域接口，由上游存储层实现。
// 引擎只读，查询失败按"信号缺失"降级处理，不会让一次推荐请求失败。
type InteractionStore interface {
	// FindAvailableCandidates 返回可售候选快照，按创建时间倒序。
	// limit <= 0 表示不分页（全量兜底）。
	FindAvailableCandidates(ctx context.Context, limit int) ([]*Item, error)

	// FindCandidateByID 返回单个候选快照；不存在时返回 (nil, nil)。
	FindCandidateByID(ctx context.Context, itemID int64) (*Item, error)

	// FindCandidatesByIDs 批量返回快照（IN 查询一次往返），缺失的 ID 不在结果中。
	FindCandidatesByIDs(ctx context.Context, itemIDs []int64) (map[int64]*Item, error)

	// RecentInteractionHistory 返回用户最近的行为束（点击/收藏/浏览分档，
	// 各档按时间倒序、受各自上限截断）。
	RecentInteractionHistory(ctx context.Context, userID int64, maxClicks, maxWishlists, maxViews int) (*InteractionHistory, error)

	// UserViewCount 返回用户的浏览记录总数（自适应权重档位判定用）。
	UserViewCount(ctx context.Context, userID int64) (int64, error)

	// TotalViewCount 返回全站浏览记录总数。
	TotalViewCount(ctx context.Context) (int64, error)

	// CoViewedByUser 返回"与该用户口味相近的用户还看了什么"：
	// 与 userID 有共同浏览历史的其他用户浏览过的物品及其共现次数，按次数降序。
	CoViewedByUser(ctx context.Context, userID int64, limit int) ([]CoView, error)

	// CoViewedByItem 返回"看过该物品的用户还看了什么"（similar 场景的行为召回）。
	CoViewedByItem(ctx context.Context, itemID int64, limit int) ([]CoView, error)

	// FindPopularSince 返回 since 之后创建、按浏览量降序的可售物品。
	FindPopularSince(ctx context.Context, since time.Time, limit int) ([]*Item, error)

	// FindFreshSince 返回 since 之后创建、按创建时间降序的可售物品。
	FindFreshSince(ctx context.Context, since time.Time, limit int) ([]*Item, error)
}

// EngagementCounters 是自适应权重选择器需要的两个计数器。
// 默认由 InteractionStore 提供，也可以接 feature store（见 feast 包）。
type EngagementCounters interface {
	UserViewCount(ctx context.Context, userID int64) (int64, error)
	TotalViewCount(ctx context.Context) (int64, error)
}
