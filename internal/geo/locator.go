package geo

import (
	"time"

	"atlas/internal/cache"
)

// 文档注释：区域反查（包围盒候选 → PIP 命中）
// 背景：按坐标找出所在王国边界；热点坐标经 geohash(6) 聚合后走 LRU。
// 约束：快照只读；首个命中的要素胜出，顺序即集合顺序；未命中不缓存。
type Locator struct {
	feats []Feature
	polys [][]Polygon
	cache *cache.LRU[string, int]
}

// NewLocator：解析集合中的面要素；非面几何跳过
func NewLocator(fc FeatureCollection, ttl time.Duration) *Locator {
	l := &Locator{cache: cache.NewLRU[string, int](4096, ttl)}
	for _, f := range fc.Features {
		ps, err := f.Geometry.Polygons()
		if err != nil {
			continue
		}
		l.feats = append(l.feats, f)
		l.polys = append(l.polys, ps)
	}
	return l
}

func (l *Locator) Len() int { return len(l.feats) }

// Locate：返回包含 pt 的要素
func (l *Locator) Locate(pt Point) (Feature, bool) {
	key := Geohash(pt, 6)
	if i, ok := l.cache.Get(key); ok {
		return l.feats[i], true
	}
	for i, ps := range l.polys {
		if ContainsAny(ps, pt) {
			l.cache.Set(key, i)
			return l.feats[i], true
		}
	}
	return Feature{}, false
}
