package feast

import (
	"context"
	"fmt"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pkg/conv"
)

// 默认特征名与实体键。全站计数挂在固定的 global 实体（ID 0）上，
// 由离线任务物化到在线存储。
const (
	DefaultUserViewFeature  = "engagement_stats:user_view_count"
	DefaultTotalViewFeature = "engagement_stats:total_view_count"
	DefaultUserEntityKey    = "user_id"
	DefaultGlobalEntityKey  = "scope_id"
)

// Counters 把 Feature Store 的在线特征适配成 core.EngagementCounters，
// 让自适应权重档位不用直查业务库。查询失败时返回错误，
// 由上层（rank.AdaptiveWeights.Select）按 0 降级。
type Counters struct {
	Client Client

	// 零值取包级默认。
	UserViewFeature  string
	TotalViewFeature string
	UserEntityKey    string
	GlobalEntityKey  string
}

var _ core.EngagementCounters = (*Counters)(nil)

func (c *Counters) features() (userFeat, totalFeat, userKey, globalKey string) {
	userFeat, totalFeat = c.UserViewFeature, c.TotalViewFeature
	userKey, globalKey = c.UserEntityKey, c.GlobalEntityKey
	if userFeat == "" {
		userFeat = DefaultUserViewFeature
	}
	if totalFeat == "" {
		totalFeat = DefaultTotalViewFeature
	}
	if userKey == "" {
		userKey = DefaultUserEntityKey
	}
	if globalKey == "" {
		globalKey = DefaultGlobalEntityKey
	}
	return
}

// UserViewCount 读取用户的浏览计数特征。
func (c *Counters) UserViewCount(ctx context.Context, userID int64) (int64, error) {
	userFeat, _, userKey, _ := c.features()
	return c.fetch(ctx, userFeat, map[string]interface{}{userKey: userID})
}

// TotalViewCount 读取全站浏览计数特征。
func (c *Counters) TotalViewCount(ctx context.Context) (int64, error) {
	_, totalFeat, _, globalKey := c.features()
	return c.fetch(ctx, totalFeat, map[string]interface{}{globalKey: int64(0)})
}

func (c *Counters) fetch(ctx context.Context, feature string, entity map[string]interface{}) (int64, error) {
	if c.Client == nil {
		return 0, fmt.Errorf("feast counters: client not configured")
	}

	resp, err := c.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{feature},
		EntityRows: []map[string]interface{}{entity},
	})
	if err != nil {
		return 0, err
	}
	if len(resp.FeatureVectors) == 0 {
		return 0, fmt.Errorf("feast counters: empty response for %s", feature)
	}

	raw, ok := resp.FeatureVectors[0].Values[feature]
	if !ok {
		// 特征还没物化：按 0 处理而不是报错，冷启动时走默认权重档
		return 0, nil
	}
	if n, ok := conv.ToInt64(raw); ok {
		return n, nil
	}
	return 0, fmt.Errorf("feast counters: unexpected value type %T for %s", raw, feature)
}
