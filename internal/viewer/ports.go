package viewer

import (
	"context"

	"atlas/internal/geo"
)

// 文档注释：数据接口协作方
// 约束：全部为阻塞调用，受 ctx 取消控制；失败原样返回，由编排层包装为 FetchError，不做重试。
type DataAPI interface {
	Locations(ctx context.Context, c Category) (geo.FeatureCollection, error)
	Boundaries(ctx context.Context) (geo.FeatureCollection, error)
	RegionSize(ctx context.Context, id int64) (float64, error)
	CastleCount(ctx context.Context, id int64) (int, error)
	RegionDetails(ctx context.Context, id int64) (Details, error)
	LocationDetails(ctx context.Context, id int64) (Details, error)
}

// Details：详情查询结果（摘要与外部链接）
type Details struct {
	SummaryText string
	URL         string
}

// Style：图形样式；零值字段在 SetStyle 时不覆盖已有值
type Style struct {
	Color       string
	Weight      float64
	FillOpacity float64
}

// Marker：点要素的渲染描述
type Marker struct {
	Icon  Icon
	Title string
	Popup string
}

// PointRenderer：点要素渲染能力
type PointRenderer interface {
	RenderPoint(f geo.Feature) Marker
}

// 文档注释：要素行为（渲染点 + 交互）
// 背景：每个调用点选择一个显式实现，点击时由地图面把 Viewer 上下文传入，不依赖闭包捕获。
type FeatureBehavior interface {
	PointRenderer
	OnFeatureClick(ctx context.Context, v *Viewer, s Shape) error
}

// Shape：图层内单个已渲染要素
type Shape interface {
	Feature() geo.Feature
	SetStyle(Style)
	BringToFront()
}

// Layer：可整体切换的图层组
type Layer interface {
	ResetStyle(s Shape)
}

// 文档注释：地图渲染协作方
// 约束：Pick 只在当前可见的图层中命中，返回绘制顺序最上层的图形。
type MapSurface interface {
	BuildLayer(name string, fc geo.FeatureCollection, r PointRenderer) (Layer, error)
	HasLayer(l Layer) bool
	AddLayer(l Layer)
	RemoveLayer(l Layer)
	Pick(pt geo.Point) (Layer, Shape, bool)
}

// Link：外部链接；打开方式与 rel 由编排层固定
type Link struct {
	Href   string
	Text   string
	Target string
	Rel    string
}

// Block：信息面板中的一段内容
type Block struct {
	Label string
	Text  string
	Link  *Link
}

// 文档注释：界面端口
// 约束：指示器按 "{category}-toggle" 寻址；缺失的槽位或指示器视为致命配置错误（ErrSurfaceMissing）。
type UI interface {
	SetTitle(title string)
	ClearContent()
	AppendContent(b Block)
	PanelActive() bool
	SetPanelActive(active bool)
	HasIndicator(id string) bool
	ToggleIndicator(id string) (bool, error)
	ViewportWidth() int
}

// Searcher：检索协作方，查询算法不在编排层范围内
type Searcher interface {
	Search(q string, limit int) []CorpusEntry
}

type SearchFactory func(corpus []CorpusEntry) Searcher
