package metrics

import (
	"context"
	"time"
)

// EventStore 是点击/曝光事件的存取抽象。
// 查询按 [start, end) 半开区间过滤；start 为零值表示不限起点。
type EventStore interface {
	AppendClick(ctx context.Context, ev *ClickEvent) error
	AppendImpression(ctx context.Context, ev *ImpressionEvent) error

	ClicksBetween(ctx context.Context, start, end time.Time) ([]*ClickEvent, error)
	ImpressionsBetween(ctx context.Context, start, end time.Time) ([]*ImpressionEvent, error)
}

// ViewSink 接收浏览事件。交互存储实现它之后，
// 浏览记录会回流成共同浏览计数等协同信号。
type ViewSink interface {
	AppendView(ctx context.Context, userID, itemID int64, at time.Time) error
}
