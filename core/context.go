package core

import "github.com/rushteam/unirec/pkg/utils"

// RecommendContext 承载一次推荐请求的用户/会话/场景信息，贯穿整个 Pipeline 透传。
//
// UserID 为 0 表示匿名用户：内容打分退化为中立分，协同打分直接为 0。
type RecommendContext struct {
	UserID    int64  // 0 = 匿名
	SessionID string // 曝光去重的 key，由上游会话层下发
	Scene     string // for_you / similar 等场景标识

	// SeedItemID 是 similar 场景的基准物品；for_you 场景为 0。
	SeedItemID int64

	// SeedItem 是已解析的基准物品快照，similar 场景由 service 填充。
	SeedItem *Item

	// Labels 是请求级标签，可驱动整个 Pipeline 行为。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（page_type、limit 覆盖等）。
	Params map[string]any
}

// Anonymous 返回该请求是否来自未登录用户。
func (rctx *RecommendContext) Anonymous() bool {
	return rctx == nil || rctx.UserID == 0
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
