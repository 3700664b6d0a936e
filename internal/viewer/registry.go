package viewer

import "fmt"

// layerEntry：分类 → 图层组 + 交互行为
type layerEntry struct {
	category Category
	layer    Layer
	behavior FeatureBehavior
}

// 文档注释：图层注册表
// 约束：键唯一；条目在整个会话内只增不删；读写由 Viewer.mu 串行化。
type registry struct {
	entries map[Category]*layerEntry
	order   []Category
}

func newRegistry() *registry {
	return &registry{entries: make(map[Category]*layerEntry)}
}

func (r *registry) register(e *layerEntry) error {
	if _, ok := r.entries[e.category]; ok {
		return fmt.Errorf("duplicate layer %q", e.category)
	}
	r.entries[e.category] = e
	r.order = append(r.order, e.category)
	return nil
}

func (r *registry) get(c Category) (*layerEntry, bool) {
	e, ok := r.entries[c]
	return e, ok
}

func (r *registry) byLayer(l Layer) (*layerEntry, bool) {
	for _, c := range r.order {
		if e := r.entries[c]; e.layer == l {
			return e, true
		}
	}
	return nil, false
}

func (r *registry) categories() []Category {
	return append([]Category(nil), r.order...)
}
