package submitter

import (
	"context"
	"sync"
	"time"
)

const NonceFreshness = 5 * time.Second

// NonceState 本地 nonce 缓存，有效期内乐观自增
type NonceState struct {
	mu        sync.Mutex
	next      uint64
	valid     bool
	fetchedAt time.Time
	freshness time.Duration
	nowFn     func() time.Time
}

func NewNonceState(freshness time.Duration) *NonceState {
	if freshness <= 0 {
		freshness = NonceFreshness
	}
	return &NonceState{freshness: freshness, nowFn: time.Now}
}

// Reserve 缓存新鲜时返回缓存值并自增；否则通过 fetch 查询 pending nonce 后重新计时
// fetch 在锁内执行，并发调用不会拿到相同的值
func (n *NonceState) Reserve(ctx context.Context, fetch func(context.Context) (uint64, error)) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.nowFn()
	if n.valid && now.Sub(n.fetchedAt) < n.freshness {
		nonce := n.next
		n.next++
		return nonce, nil
	}

	nonce, err := fetch(ctx)
	if err != nil {
		n.valid = false
		return 0, err
	}
	n.next = nonce + 1
	n.fetchedAt = now
	n.valid = true
	return nonce, nil
}

// Invalidate 下次 Reserve 强制查链
func (n *NonceState) Invalidate() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.valid = false
}
