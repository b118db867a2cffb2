package metrics

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationType 区分两类推荐入口。
type RecommendationType string

const (
	// TypeForYou 个性化首页推荐
	TypeForYou RecommendationType = "FOR_YOU"
	// TypeSimilar 详情页相似推荐
	TypeSimilar RecommendationType = "SIMILAR"
)

// Types 返回所有推荐类型，聚合统计按此遍历。
func Types() []RecommendationType {
	return []RecommendationType{TypeForYou, TypeSimilar}
}

// ClickEvent 一次推荐点击。
// UserID 为 0 表示匿名用户；SourceItemID 仅 SIMILAR 类型有值。
type ClickEvent struct {
	ID           string
	ItemID       int64
	UserID       int64
	SessionID    string
	Type         RecommendationType
	Position     int // 推荐列表内的位置，从 0 开始
	Slot         string
	SourceItemID int64
	ClickedAt    time.Time
}

// ImpressionEvent 一次推荐曝光（一屏若干条记一次，Count 为条数）。
type ImpressionEvent struct {
	ID           string
	SessionID    string
	UserID       int64
	Type         RecommendationType
	Count        int
	PageType     string
	SourceItemID int64
	ImpressedAt  time.Time
}

// NewEventID 生成事件 ID。
func NewEventID() string {
	return uuid.NewString()
}
