// 包 mapview：进程内地图面，实现图层组、样式、绘制顺序、图层存在性与点击命中
package mapview

import (
	"fmt"
	"sync"

	"atlas/internal/geo"
	"atlas/internal/logger"
	"atlas/internal/viewer"
)

// DefaultPickRadiusKm：点标记命中半径
const DefaultPickRadiusKm = 25.0

// DefaultStyle：面要素的默认样式
var DefaultStyle = viewer.Style{Color: "#3388ff", Weight: 3, FillOpacity: 0.2}

// 文档注释：地图面
// 约束：present 保存已加入的图层，末尾为最上层；所有方法线程安全，终端界面渲染时并发读取。
type Surface struct {
	mu       sync.RWMutex
	present  []*Layer
	radiusKm float64
}

func New(radiusKm float64) *Surface {
	if radiusKm <= 0 {
		radiusKm = DefaultPickRadiusKm
	}
	return &Surface{radiusKm: radiusKm}
}

// 文档注释：由要素集合构建图层
// 约束：点要素经 PointRenderer 生成标记（nil 时仅以名称为标题）；面要素解析为多边形；其他几何报错。
func (s *Surface) BuildLayer(name string, fc geo.FeatureCollection, r viewer.PointRenderer) (viewer.Layer, error) {
	l := &Layer{name: name, surface: s, base: DefaultStyle}
	var pts []geo.Point
	for i, f := range fc.Features {
		sh := &Shape{layer: l, feature: f, style: l.base}
		switch {
		case f.Geometry.IsPoint():
			p, err := f.Geometry.Point()
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			sh.point = p
			sh.isMarker = true
			if r != nil {
				sh.marker = r.RenderPoint(f)
			} else {
				sh.marker = viewer.Marker{Title: f.Name()}
			}
			pts = append(pts, p)
			l.markers = append(l.markers, sh)
		case f.Geometry.IsAreal():
			ps, err := f.Geometry.Polygons()
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			sh.polys = ps
			l.areas = append(l.areas, sh)
		default:
			return nil, fmt.Errorf("feature %d: %w: %q", i, geo.ErrUnsupportedGeometry, f.Geometry.Type)
		}
		l.nextZ++
		sh.z = l.nextZ
		l.shapes = append(l.shapes, sh)
	}
	l.index = geo.NewPointIndex(pts)
	logger.L().Debug("mapview_layer_built", "layer", name, "markers", len(l.markers), "areas", len(l.areas))
	return l, nil
}

func (s *Surface) HasLayer(vl viewer.Layer) bool {
	l, ok := vl.(*Layer)
	if !ok {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(l) >= 0
}

// AddLayer：加入到最上层；已存在时不变
func (s *Surface) AddLayer(vl viewer.Layer) {
	l, ok := vl.(*Layer)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(l) < 0 {
		s.present = append(s.present, l)
	}
}

func (s *Surface) RemoveLayer(vl viewer.Layer) {
	l, ok := vl.(*Layer)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(l); i >= 0 {
		s.present = append(s.present[:i], s.present[i+1:]...)
	}
}

func (s *Surface) indexOf(l *Layer) int {
	for i, p := range s.present {
		if p == l {
			return i
		}
	}
	return -1
}

// 文档注释：点击命中
// 约束：点标记始终位于面之上。先自上而下在所有可见图层中找半径内最近的标记，
// 都未命中时再自上而下取包含该点且绘制顺序最高的面。
func (s *Surface) Pick(pt geo.Point) (viewer.Layer, viewer.Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.present) - 1; i >= 0; i-- {
		l := s.present[i]
		if sh := l.pickMarker(pt, s.radiusKm); sh != nil {
			return l, sh, true
		}
	}
	for i := len(s.present) - 1; i >= 0; i-- {
		l := s.present[i]
		if sh := l.pickArea(pt); sh != nil {
			return l, sh, true
		}
	}
	return nil, nil, false
}

// LayerView：渲染快照
type LayerView struct {
	Name   string
	Shapes []ShapeView
}

type ShapeView struct {
	Feature  geo.Feature
	Marker   viewer.Marker
	IsMarker bool
	Point    geo.Point
	Polygons []geo.Polygon
	Style    viewer.Style
}

// Present：按绘制顺序（底 → 顶）返回可见图层快照；图层内按 z 升序
func (s *Surface) Present() []LayerView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LayerView, 0, len(s.present))
	for _, l := range s.present {
		out = append(out, l.view())
	}
	return out
}
