package dsl

import (
	"testing"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pkg/utils"
)

func newEvalContext() (*core.Item, *core.RecommendContext) {
	item := &core.Item{
		ID:        7,
		BookISBN:  "9787111111111",
		SubjectID: 42,
		Status:    core.StatusAvailable,
		Score:     0.83,
	}
	item.PutLabel("recall_source", utils.Label{Value: "recall.popular", Source: "recall"})
	rctx := &core.RecommendContext{UserID: 10, Scene: "for_you"}
	return item, rctx
}

func TestEval_Evaluate(t *testing.T) {
	item, rctx := newEvalContext()
	e := NewEval(item, rctx)

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"空表达式恒真", "", true},
		{"物品字段", "item.subject_id == 42", true},
		{"分数比较", "item.score > 0.8", true},
		{"状态字符串", `item.status == "AVAILABLE"`, true},
		{"标签顶层访问", `label.recall_source == "recall.popular"`, true},
		{"标签 contains", `label.recall_source.contains("popular")`, true},
		{"上下文字段", `rctx.scene == "for_you" && rctx.user_id == 10`, true},
		{"不成立的条件", "item.subject_id == 99", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) 失败: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, 期望 %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	item, rctx := newEvalContext()
	e := NewEval(item, rctx)

	t.Run("语法错误", func(t *testing.T) {
		if _, err := e.Evaluate("item.score >"); err == nil {
			t.Error("语法错误应返回 error")
		}
	})

	t.Run("非布尔结果", func(t *testing.T) {
		if _, err := e.Evaluate("item.score"); err == nil {
			t.Error("非布尔表达式应返回 error")
		}
	})

	t.Run("访问不存在的标签", func(t *testing.T) {
		if _, err := e.Evaluate(`label.not_exist == "x"`); err == nil {
			t.Error("访问不存在的 key 应返回 error")
		}
	})
}
