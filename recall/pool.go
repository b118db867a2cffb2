package recall

import (
	"sync"
	"time"

	"github.com/rushteam/unirec/core"
)

// cachedPool 是带 TTL 的候选池缓存。池子是全站共享的（不含用户维度），
// 按请求过滤本人物品的工作留给下游 filter 节点完成。
// 参数（窗口/容量）变化时缓存立即失效。
type cachedPool struct {
	mu         sync.Mutex
	items      []*core.Item
	expiresAt  time.Time
	windowDays int
	size       int
}

func (p *cachedPool) get(now time.Time, windowDays, size int) ([]*core.Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.items == nil || now.After(p.expiresAt) || p.windowDays != windowDays || p.size != size {
		return nil, false
	}
	return p.items, true
}

func (p *cachedPool) put(now time.Time, items []*core.Item, ttl time.Duration, windowDays, size int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = items
	p.expiresAt = now.Add(ttl)
	p.windowDays = windowDays
	p.size = size
}
