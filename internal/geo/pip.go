package geo

// 文档注释：点入多边形判定（Even-Odd）
// 约束：射线算法在边界临界值时受数值误差影响；外环命中且不在任何洞内才视为命中。
func Contains(poly Polygon, pt Point) bool {
	if len(poly.Rings) == 0 {
		return false
	}
	if !inBBox(pt, poly.BBox) {
		return false
	}
	if !pointInRing(pt, poly.Rings[0]) {
		return false
	}
	for i := 1; i < len(poly.Rings); i++ {
		if pointInRing(pt, poly.Rings[i]) {
			return false
		}
	}
	return true
}

// ContainsAny：任一多边形命中即为命中（MultiPolygon）
func ContainsAny(polys []Polygon, pt Point) bool {
	for _, p := range polys {
		if Contains(p, pt) {
			return true
		}
	}
	return false
}

// 射线法判定点是否在环内
func pointInRing(pt Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x := pt.Lon
	y := pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		intersect := ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi)
		if intersect {
			inside = !inside
		}
	}
	return inside
}

func inBBox(pt Point, b [4]float64) bool {
	return pt.Lon >= b[0] && pt.Lon <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}
