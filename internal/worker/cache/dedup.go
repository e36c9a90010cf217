package cache

import "sync"

// DedupWindow 按插入顺序淘汰的去重窗口，超过上限时只保留最近插入的一半
type DedupWindow struct {
	mu    sync.Mutex
	max   int
	seen  map[string]struct{}
	order []string
}

func NewDedupWindow(max int) *DedupWindow {
	if max <= 0 {
		max = 10000
	}
	return &DedupWindow{
		max:   max,
		seen:  make(map[string]struct{}, max),
		order: make([]string, 0, max),
	}
}

// SeenOrAdd 已存在返回 true；否则插入并返回 false
func (d *DedupWindow) SeenOrAdd(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	return false
}

// PruneIfOversized 超过上限时保留最近插入的 max/2 个，返回淘汰数量
func (d *DedupWindow) PruneIfOversized() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.order) <= d.max {
		return 0
	}

	keep := d.max / 2
	evicted := len(d.order) - keep
	for _, id := range d.order[:evicted] {
		delete(d.seen, id)
	}

	// 拷贝到新切片，释放旧底层数组
	order := make([]string, keep, d.max)
	copy(order, d.order[evicted:])
	d.order = order
	return evicted
}

func (d *DedupWindow) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

func (d *DedupWindow) Max() int {
	return d.max
}
