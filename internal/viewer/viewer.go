// 包 viewer：地图查看器编排层，负责分类图层的顺序加载、检索语料构建、区域高亮与信息面板填充
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"atlas/internal/geo"
	"atlas/internal/logger"
	"atlas/internal/metrics"

	"golang.org/x/text/language"
)

// DefaultBreakpoint：视口宽度超过该值时信息面板自动展开
const DefaultBreakpoint = 600

// Options：可选参数；零值使用默认图标地址、英文分组格式与 600 像素阈值
type Options struct {
	IconBaseURL string
	Locale      language.Tag
	Breakpoint  int
}

// 文档注释：查看器上下文
// 背景：所有事件回调显式接收该对象，注册表、高亮与面板状态只通过它修改。
// 约束：mu 串行化全部状态与界面写入；网络查询在锁外执行。
type Viewer struct {
	mu         sync.Mutex
	api        DataAPI
	surface    MapSurface
	ui         UI
	newSearch  SearchFactory
	iconBase   string
	locale     language.Tag
	breakpoint int

	registry    *registry
	loading     bool
	loaded      bool
	corpus      []CorpusEntry
	search      Searcher
	highlighted Shape
	gen         uint64
}

// New：校验界面端口后构造查看器；任一分类指示器缺失返回 ErrSurfaceMissing
func New(api DataAPI, surface MapSurface, ui UI, newSearch SearchFactory, opts Options) (*Viewer, error) {
	if api == nil || surface == nil {
		return nil, errors.New("viewer: data api and map surface are required")
	}
	if ui == nil {
		return nil, fmt.Errorf("%w: ui", ErrSurfaceMissing)
	}
	for _, c := range AllCategories() {
		if !ui.HasIndicator(c.ToggleID()) {
			return nil, fmt.Errorf("%w: %s", ErrSurfaceMissing, c.ToggleID())
		}
	}
	tag := opts.Locale
	if tag == language.Und {
		tag = language.English
	}
	bp := opts.Breakpoint
	if bp <= 0 {
		bp = DefaultBreakpoint
	}
	return &Viewer{
		api:        api,
		surface:    surface,
		ui:         ui,
		newSearch:  newSearch,
		iconBase:   opts.IconBaseURL,
		locale:     tag,
		breakpoint: bp,
		registry:   newRegistry(),
	}, nil
}

// 文档注释：启动加载
// 背景：按声明顺序逐个加载点分类，再加载边界；每步完成后才开始下一步，语料顺序因此确定。
// 约束：任一查询或建层失败即中止，注册表保持为空；检索协作方只构建一次；最后切换默认可见分类。
func (v *Viewer) LoadAll(ctx context.Context) error {
	v.mu.Lock()
	if v.loaded || v.loading {
		v.mu.Unlock()
		return ErrAlreadyLoaded
	}
	v.loading = true
	v.mu.Unlock()

	t0 := time.Now()
	staged, corpus, err := v.fetchLayers(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		metrics.LoadFailTotal.Inc()
		logger.L().Error("viewer_load_error", "err", err)
		return err
	}
	for _, e := range staged {
		if err := v.registry.register(e); err != nil {
			v.registry = newRegistry()
			return err
		}
	}
	v.corpus = corpus
	if v.newSearch != nil {
		v.search = v.newSearch(append([]CorpusEntry(nil), corpus...))
	}
	v.loaded = true
	for _, c := range DefaultVisible {
		if err := v.toggleLocked(c); err != nil {
			return err
		}
	}
	ms := time.Since(t0).Milliseconds()
	metrics.LoadDurationMs.Observe(float64(ms))
	logger.L().Info("viewer_load_done", "layers", len(staged), "corpus", len(corpus), "duration_ms", ms)
	return nil
}

func (v *Viewer) fetchLayers(ctx context.Context) ([]*layerEntry, []CorpusEntry, error) {
	var staged []*layerEntry
	var corpus []CorpusEntry
	for _, c := range PointCategories {
		fc, err := v.api.Locations(ctx, c)
		if err != nil {
			return nil, nil, &FetchError{Op: "locations", Category: c, Err: err}
		}
		b := locationBehavior{icon: IconFor(v.iconBase, c)}
		layer, err := v.surface.BuildLayer(string(c), fc, b)
		if err != nil {
			return nil, nil, fmt.Errorf("build layer %s: %w", c, err)
		}
		corpus = append(corpus, locationEntries(c, fc)...)
		staged = append(staged, &layerEntry{category: c, layer: layer, behavior: b})
		logger.L().Debug("viewer_layer_loaded", "category", c, "features", len(fc.Features))
	}
	fc, err := v.api.Boundaries(ctx)
	if err != nil {
		return nil, nil, &FetchError{Op: "boundaries", Category: Boundary, Err: err}
	}
	corpus = append(corpus, boundaryEntries(fc)...)
	b := boundaryBehavior{}
	layer, err := v.surface.BuildLayer(string(Boundary), fc, b)
	if err != nil {
		return nil, nil, fmt.Errorf("build layer %s: %w", Boundary, err)
	}
	staged = append(staged, &layerEntry{category: Boundary, layer: layer, behavior: b})
	logger.L().Debug("viewer_layer_loaded", "category", Boundary, "features", len(fc.Features))
	return staged, corpus, nil
}

// Loaded：启动加载是否已成功完成
func (v *Viewer) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Categories：已注册分类（注册顺序）
func (v *Viewer) Categories() []Category {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registry.categories()
}

// Click：在地图坐标处命中要素并分派到所属图层的行为
func (v *Viewer) Click(ctx context.Context, pt geo.Point) error {
	v.mu.Lock()
	layer, shape, ok := v.surface.Pick(pt)
	var b FeatureBehavior
	if ok {
		if e, found := v.registry.byLayer(layer); found {
			b = e.behavior
		}
	}
	v.mu.Unlock()
	if b == nil {
		return ErrNoFeature
	}
	return b.OnFeatureClick(ctx, v, shape)
}
