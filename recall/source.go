// Package recall 实现候选集生成：可售候选、热门池、新鲜池、行为共现。
package recall

import (
	"context"

	"github.com/rushteam/unirec/core"
)

// Source 表示一个可复用的召回源（可售/热门/新鲜/共现/...）。
// 可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
