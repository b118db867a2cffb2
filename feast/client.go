// Package feast 接入 Feast Feature Store 的在线特征，
// 为自适应权重档位提供用户/全站的互动计数特征。
package feast

import "context"

// Client 是 Feature Store 客户端的领域接口。
// 领域层只依赖这个接口，gRPC 实现见 GrpcClient。
type Client interface {
	// GetOnlineFeatures 批量获取在线特征。
	//
	// 参数：
	//   - Features: 特征名称列表，例如 ["engagement_stats:user_view_count"]
	//   - EntityRows: 实体行，例如 [{"user_id": 1001}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表
	Features []string

	// EntityRows 实体行，例如 [{"user_id": 1001}, {"user_id": 1002}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，覆盖客户端默认值）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}
