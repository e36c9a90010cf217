package cache

import (
	"sort"
	"strings"

	"web3-sniper/internal/worker/model"
)

// Whitelist 可信创建者集合，启动时构建一次，之后只读
type Whitelist struct {
	creators map[string]struct{}
}

func NewWhitelist() *Whitelist {
	return &Whitelist{creators: make(map[string]struct{})}
}

// normalize 地址统一小写比较
func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Initialize 清空并重新填充，空地址跳过
func (w *Whitelist) Initialize(entries []model.WhitelistEntry) {
	creators := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		key := normalize(entry.Creator)
		if key == "" {
			continue
		}
		creators[key] = struct{}{}
	}
	w.creators = creators
}

func (w *Whitelist) Contains(creator string) bool {
	_, ok := w.creators[normalize(creator)]
	return ok
}

func (w *Whitelist) Len() int {
	return len(w.creators)
}

// Entries 排序后的小写地址
func (w *Whitelist) Entries() []string {
	out := make([]string, 0, len(w.creators))
	for creator := range w.creators {
		out = append(out, creator)
	}
	sort.Strings(out)
	return out
}
