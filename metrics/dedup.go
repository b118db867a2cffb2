package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rushteam/unirec/core"
)

// DefaultDedupWindow 曝光去重窗口：同一会话 + 同一类型在窗口内只记一次。
const DefaultDedupWindow = 5 * time.Minute

// Deduper 曝光去重器。Claim 原子地检查并占用一个 (sessionID, type) 槽位：
// 返回 true 表示首次出现（应当记录），false 表示窗口内重复。
type Deduper interface {
	Claim(ctx context.Context, sessionID string, typ RecommendationType, window time.Duration) (bool, error)
}

// MemoryDeduper 内存去重器，线程安全。
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time

	// Now 便于测试替换时钟。
	Now func() time.Time
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time)}
}

func (d *MemoryDeduper) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *MemoryDeduper) Claim(
	_ context.Context,
	sessionID string,
	typ RecommendationType,
	window time.Duration,
) (bool, error) {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	key := dedupKey(sessionID, typ)
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.seen[key]; ok && now.Sub(last) < window {
		return false, nil
	}
	d.seen[key] = now

	// 顺带清理过期槽位，防止无界增长
	for k, t := range d.seen {
		if now.Sub(t) >= window {
			delete(d.seen, k)
		}
	}
	return true, nil
}

// StoreDeduper 基于 core.Store 的去重器，靠 SetNX + TTL 实现原子占位。
// 配合 Redis 存储可以在多实例间共享去重窗口。
type StoreDeduper struct {
	Store core.Store
	// Prefix 键前缀，空值取默认。
	Prefix string
}

func (d *StoreDeduper) prefix() string {
	if d.Prefix == "" {
		return "unirec:impression:dedup:"
	}
	return d.Prefix
}

func (d *StoreDeduper) Claim(
	ctx context.Context,
	sessionID string,
	typ RecommendationType,
	window time.Duration,
) (bool, error) {
	if d.Store == nil {
		return true, nil
	}
	if window <= 0 {
		window = DefaultDedupWindow
	}
	ttl := int(window / time.Second)
	return d.Store.SetNX(ctx, d.prefix()+dedupKey(sessionID, typ), []byte("1"), ttl)
}

func dedupKey(sessionID string, typ RecommendationType) string {
	return fmt.Sprintf("%s|%s", sessionID, typ)
}
