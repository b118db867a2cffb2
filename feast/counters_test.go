package feast

import (
	"context"
	"errors"
	"testing"
)

// stubClient 按特征名返回固定值。
type stubClient struct {
	values map[string]interface{}
	err    error

	lastReq *GetOnlineFeaturesRequest
}

func (c *stubClient) GetOnlineFeatures(
	_ context.Context,
	req *GetOnlineFeaturesRequest,
) (*GetOnlineFeaturesResponse, error) {
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return &GetOnlineFeaturesResponse{
		FeatureVectors: []FeatureVector{{Values: c.values}},
	}, nil
}

func (c *stubClient) Close() error { return nil }

func TestCounters_UserViewCount(t *testing.T) {
	stub := &stubClient{values: map[string]interface{}{
		DefaultUserViewFeature: int64(42),
	}}
	c := &Counters{Client: stub}

	got, err := c.UserViewCount(context.Background(), 1001)
	if err != nil {
		t.Fatalf("UserViewCount 失败: %v", err)
	}
	if got != 42 {
		t.Errorf("UserViewCount = %d, 期望 42", got)
	}
	// 请求应携带用户实体行
	if stub.lastReq == nil || len(stub.lastReq.EntityRows) != 1 {
		t.Fatalf("请求实体行异常: %+v", stub.lastReq)
	}
	if id, ok := stub.lastReq.EntityRows[0][DefaultUserEntityKey]; !ok || id != int64(1001) {
		t.Errorf("实体键 = %v, 期望 user_id=1001", stub.lastReq.EntityRows[0])
	}
}

func TestCounters_TotalViewCount(t *testing.T) {
	// 在线存储常把计数物化为 double
	stub := &stubClient{values: map[string]interface{}{
		DefaultTotalViewFeature: float64(5000),
	}}
	c := &Counters{Client: stub}

	got, err := c.TotalViewCount(context.Background())
	if err != nil {
		t.Fatalf("TotalViewCount 失败: %v", err)
	}
	if got != 5000 {
		t.Errorf("TotalViewCount = %d, 期望 5000", got)
	}
}

func TestCounters_Degradation(t *testing.T) {
	t.Run("特征未物化时按 0 处理", func(t *testing.T) {
		c := &Counters{Client: &stubClient{values: map[string]interface{}{}}}
		got, err := c.UserViewCount(context.Background(), 1001)
		if err != nil || got != 0 {
			t.Errorf("缺失特征 = (%d, %v), 期望 (0, nil)", got, err)
		}
	})

	t.Run("查询失败透传错误", func(t *testing.T) {
		c := &Counters{Client: &stubClient{err: errors.New("unavailable")}}
		if _, err := c.UserViewCount(context.Background(), 1001); err == nil {
			t.Error("客户端错误应透传给上层降级")
		}
	})

	t.Run("未配置客户端", func(t *testing.T) {
		c := &Counters{}
		if _, err := c.TotalViewCount(context.Background()); err == nil {
			t.Error("无客户端应报错")
		}
	})
}
