package geo

import "math"

// 文档注释：KD-Tree 最近邻（二维经纬）
// 背景：地图点标记的点击命中按最近点判定，外部用半径上限过滤远处误点。
// 约束：按经度/纬度交替分割；仅支持最近一个点查询；构建时不修改调用方切片。
type PointIndex struct {
	root *kdNode
	size int
}

type kdEntry struct {
	p   Point
	idx int
}

type kdNode struct {
	e  kdEntry
	ax int // 0:lon,1:lat
	l  *kdNode
	r  *kdNode
}

// NewPointIndex：以切片下标为值构建索引
func NewPointIndex(pts []Point) *PointIndex {
	es := make([]kdEntry, len(pts))
	for i, p := range pts {
		es[i] = kdEntry{p: p, idx: i}
	}
	return &PointIndex{root: buildKD(es, 0), size: len(pts)}
}

func (x *PointIndex) Len() int { return x.size }

// Nearest：返回最近点下标与距离（千米）；空索引返回 -1
func (x *PointIndex) Nearest(pt Point) (int, float64) {
	if x == nil || x.root == nil {
		return -1, math.MaxFloat64
	}
	e, d := nearest(x.root, pt)
	return e.idx, d
}

func buildKD(es []kdEntry, depth int) *kdNode {
	if len(es) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(es) / 2
	selectNth(es, mid, ax)
	node := &kdNode{e: es[mid], ax: ax}
	node.l = buildKD(es[:mid], depth+1)
	node.r = buildKD(es[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择（轴为经度/纬度）
func selectNth(a []kdEntry, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []kdEntry, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if less(a[j].p, pv.p, ax) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func less(x, y Point, ax int) bool {
	if ax == 0 {
		return x.Lon < y.Lon
	}
	return x.Lat < y.Lat
}

func nearest(node *kdNode, pt Point) (kdEntry, float64) {
	best := kdEntry{idx: -1}
	bestD := math.MaxFloat64
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		d := Haversine(pt, n.e.p)
		if d < bestD {
			bestD = d
			best = n.e
		}
		var key, q float64
		if n.ax == 0 {
			key, q = pt.Lon, n.e.p.Lon
		} else {
			key, q = pt.Lat, n.e.p.Lat
		}
		first, second := n.l, n.r
		if key > q {
			first, second = n.r, n.l
		}
		dfs(first)
		// 仅当分割平面到查询点的距离小于当前最优距离时才遍历另一侧
		if math.Abs(key-q) < bestD/111.0 {
			dfs(second)
		}
	}
	dfs(node)
	return best, bestD
}

// 球面距离（Haversine），返回千米
func Haversine(a, b Point) float64 {
	const R = 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return R * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
