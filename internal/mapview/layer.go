package mapview

import (
	"sort"

	"atlas/internal/geo"
	"atlas/internal/viewer"
)

// Layer：图层组；样式与 z 序的读写共用所属地图面的锁
type Layer struct {
	name    string
	surface *Surface
	base    viewer.Style
	shapes  []*Shape
	markers []*Shape
	areas   []*Shape
	index   *geo.PointIndex
	nextZ   int
}

func (l *Layer) Name() string { return l.name }

func (l *Layer) Len() int { return len(l.shapes) }

// ResetStyle：恢复为图层默认样式；非本图层图形忽略
func (l *Layer) ResetStyle(vs viewer.Shape) {
	sh, ok := vs.(*Shape)
	if !ok || sh.layer != l {
		return
	}
	l.surface.mu.Lock()
	defer l.surface.mu.Unlock()
	sh.style = l.base
}

func (l *Layer) pickMarker(pt geo.Point, radiusKm float64) *Shape {
	if i, d := l.index.Nearest(pt); i >= 0 && d <= radiusKm {
		return l.markers[i]
	}
	return nil
}

func (l *Layer) pickArea(pt geo.Point) *Shape {
	var best *Shape
	for _, sh := range l.areas {
		if geo.ContainsAny(sh.polys, pt) && (best == nil || sh.z > best.z) {
			best = sh
		}
	}
	return best
}

func (l *Layer) view() LayerView {
	shapes := append([]*Shape(nil), l.shapes...)
	sort.SliceStable(shapes, func(i, j int) bool { return shapes[i].z < shapes[j].z })
	lv := LayerView{Name: l.name, Shapes: make([]ShapeView, 0, len(shapes))}
	for _, sh := range shapes {
		lv.Shapes = append(lv.Shapes, ShapeView{
			Feature:  sh.feature,
			Marker:   sh.marker,
			IsMarker: sh.isMarker,
			Point:    sh.point,
			Polygons: sh.polys,
			Style:    sh.style,
		})
	}
	return lv
}

// Shape：已渲染的单个要素
type Shape struct {
	layer    *Layer
	feature  geo.Feature
	style    viewer.Style
	z        int
	isMarker bool
	marker   viewer.Marker
	point    geo.Point
	polys    []geo.Polygon
}

func (sh *Shape) Feature() geo.Feature { return sh.feature }

// SetStyle：合并样式，零值字段保留原值
func (sh *Shape) SetStyle(st viewer.Style) {
	sh.layer.surface.mu.Lock()
	defer sh.layer.surface.mu.Unlock()
	if st.Color != "" {
		sh.style.Color = st.Color
	}
	if st.Weight != 0 {
		sh.style.Weight = st.Weight
	}
	if st.FillOpacity != 0 {
		sh.style.FillOpacity = st.FillOpacity
	}
}

// BringToFront：置于图层内绘制顺序最上
func (sh *Shape) BringToFront() {
	sh.layer.surface.mu.Lock()
	defer sh.layer.surface.mu.Unlock()
	sh.layer.nextZ++
	sh.z = sh.layer.nextZ
}

func (sh *Shape) Style() viewer.Style {
	sh.layer.surface.mu.RLock()
	defer sh.layer.surface.mu.RUnlock()
	return sh.style
}

func (sh *Shape) Marker() viewer.Marker { return sh.marker }
