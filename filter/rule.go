package filter

import (
	"context"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pkg/dsl"
)

// RuleFilter 基于 CEL 表达式过滤物品，表达式返回 true 的物品会被移除。
// 用于运营规则下发，例如：
//
//	item.subject_id == 42 && item.score < 0.2
//	label.recall_source == "recall.popular"
type RuleFilter struct {
	// Expr CEL 表达式，空表达式不过滤任何物品。
	Expr string
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
