package cache

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	PURCHASE_GUARD_TTL = 10 * time.Minute // 同一 token 买入保护期
)

// PurchaseGuard 防止同一 token 在保护期内被重复买入
type PurchaseGuard struct {
	local *cache.Cache
}

func NewPurchaseGuard(ttl time.Duration) *PurchaseGuard {
	if ttl <= 0 {
		ttl = PURCHASE_GUARD_TTL
	}
	return &PurchaseGuard{local: cache.New(ttl, time.Minute)}
}

// TryAcquire 占用成功返回 true；已被占用返回 false
func (g *PurchaseGuard) TryAcquire(token string) bool {
	return g.local.Add(strings.ToLower(token), time.Now(), cache.DefaultExpiration) == nil
}

// Release 买入失败时释放，允许后续重新尝试
func (g *PurchaseGuard) Release(token string) {
	g.local.Delete(strings.ToLower(token))
}

func (g *PurchaseGuard) Len() int {
	return g.local.ItemCount()
}
