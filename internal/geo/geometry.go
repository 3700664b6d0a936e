package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedGeometry = errors.New("unsupported geometry")

// IsPoint：几何是否为点（大小写不敏感）
func (g Geometry) IsPoint() bool { return strings.EqualFold(g.Type, "point") }

// IsAreal：几何是否为 Polygon/MultiPolygon
func (g Geometry) IsAreal() bool {
	return strings.EqualFold(g.Type, "polygon") || strings.EqualFold(g.Type, "multipolygon")
}

// Point：解析点坐标 [lon, lat]
func (g Geometry) Point() (Point, error) {
	if !g.IsPoint() {
		return Point{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.Type)
	}
	var c []float64
	if err := json.Unmarshal(g.Coordinates, &c); err != nil {
		return Point{}, err
	}
	if len(c) < 2 {
		return Point{}, errors.New("point needs two coordinates")
	}
	return Point{Lat: c[1], Lon: c[0]}, nil
}

// 文档注释：解析面几何为多边形列表
// 约束：Polygon 产出一项，MultiPolygon 每个部分一项；环内少于 2 个分量的坐标被跳过。
func (g Geometry) Polygons() ([]Polygon, error) {
	switch strings.ToLower(g.Type) {
	case "polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, err
		}
		return []Polygon{buildPolygon(rings)}, nil
	case "multipolygon":
		var parts [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &parts); err != nil {
			return nil, err
		}
		out := make([]Polygon, 0, len(parts))
		for _, part := range parts {
			out = append(out, buildPolygon(part))
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.Type)
}

func buildPolygon(rings [][][]float64) Polygon {
	var poly Polygon
	for _, ring := range rings {
		var rr []Point
		for _, vv := range ring {
			if len(vv) >= 2 {
				rr = append(rr, Point{Lat: vv[1], Lon: vv[0]})
			}
		}
		poly.Rings = append(poly.Rings, rr)
	}
	poly.BBox = computeBBox(poly)
	return poly
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			if pt.Lon < b[0] {
				b[0] = pt.Lon
			}
			if pt.Lat < b[1] {
				b[1] = pt.Lat
			}
			if pt.Lon > b[2] {
				b[2] = pt.Lon
			}
			if pt.Lat > b[3] {
				b[3] = pt.Lat
			}
		}
	}
	return b
}

// PointGeometry：由经纬度构造 GeoJSON 点几何
func PointGeometry(p Point) Geometry {
	b, _ := json.Marshal([]float64{p.Lon, p.Lat})
	return Geometry{Type: "Point", Coordinates: b}
}

// PolygonGeometry：由外环构造 GeoJSON 面几何，首尾自动闭合
func PolygonGeometry(ring []Point) Geometry {
	cs := make([][]float64, 0, len(ring)+1)
	for _, p := range ring {
		cs = append(cs, []float64{p.Lon, p.Lat})
	}
	if n := len(ring); n > 0 && ring[0] != ring[n-1] {
		cs = append(cs, []float64{ring[0].Lon, ring[0].Lat})
	}
	b, _ := json.Marshal([][][]float64{cs})
	return Geometry{Type: "Polygon", Coordinates: b}
}
