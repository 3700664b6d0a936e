package viewer

import (
	"context"
	"math"
	"strconv"
	"time"

	"atlas/internal/logger"
	"atlas/internal/metrics"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// InfoKind：信息面板的实体类型
type InfoKind string

const (
	InfoRegions  InfoKind = "regions"
	InfoLocation InfoKind = "location"
)

const readMoreText = "Read More..."

// 文档注释：填充信息面板
// 背景：regions 的三项查询（面积、城堡数、详情）并发发起，汇合后按固定顺序写入；location 仅查一次详情。
// 约束：每次调用领取单调递增的代号，汇合时代号已过期的结果直接丢弃；查询失败原样返回，不写入兜底内容。
// 视口宽于阈值且面板未展开时自动展开，较窄视口保持原状。
func (v *Viewer) ShowInfo(ctx context.Context, name string, id int64, kind InfoKind) error {
	t0 := time.Now()
	metrics.InfoRequestsTotal.WithLabelValues(string(kind)).Inc()

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.ui.SetTitle(name)
	v.ui.ClearContent()
	v.mu.Unlock()

	var blocks []Block
	var err error
	if kind == InfoRegions {
		blocks, err = v.regionBlocks(ctx, id)
	} else {
		blocks, err = v.locationBlocks(ctx, id)
	}
	if err != nil {
		logger.L().Error("viewer_info_error", "id", id, "kind", kind, "err", err)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		metrics.InfoStaleTotal.Inc()
		logger.L().Debug("viewer_info_stale", "id", id, "gen", gen, "current", v.gen)
		return nil
	}
	for _, b := range blocks {
		v.ui.AppendContent(b)
	}
	if !v.ui.PanelActive() && v.ui.ViewportWidth() > v.breakpoint {
		v.ui.SetPanelActive(true)
	}
	ms := time.Since(t0).Milliseconds()
	metrics.InfoDurationMs.WithLabelValues(string(kind)).Observe(float64(ms))
	logger.L().Debug("viewer_info_done", "id", id, "kind", kind, "blocks", len(blocks), "duration_ms", ms)
	return nil
}

func (v *Viewer) regionBlocks(ctx context.Context, id int64) ([]Block, error) {
	var (
		size    float64
		castles int
		details Details
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := v.api.RegionSize(gctx, id)
		if err != nil {
			return &FetchError{Op: "region_size", ID: id, Err: err}
		}
		size = s
		return nil
	})
	g.Go(func() error {
		n, err := v.api.CastleCount(gctx, id)
		if err != nil {
			return &FetchError{Op: "castle_count", ID: id, Err: err}
		}
		castles = n
		return nil
	})
	g.Go(func() error {
		d, err := v.api.RegionDetails(gctx, id)
		if err != nil {
			return &FetchError{Op: "region_details", ID: id, Err: err}
		}
		details = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return []Block{
		{Label: "Size", Text: v.FormatSize(size) + " km² (estimate)"},
		{Label: "Castles", Text: strconv.Itoa(castles)},
		detailsBlock(details),
	}, nil
}

func (v *Viewer) locationBlocks(ctx context.Context, id int64) ([]Block, error) {
	d, err := v.api.LocationDetails(ctx, id)
	if err != nil {
		return nil, &FetchError{Op: "location_details", ID: id, Err: err}
	}
	return []Block{detailsBlock(d)}, nil
}

// 外链在新窗口打开，且不向目标页暴露 opener 与 referrer
func detailsBlock(d Details) Block {
	return Block{
		Text: d.SummaryText,
		Link: &Link{Href: d.URL, Text: readMoreText, Target: "_blank", Rel: "noopener noreferrer"},
	}
}

// FormatSize：按区域设置做千分位分组，不保留小数；.5 远离零取整
func (v *Viewer) FormatSize(km2 float64) string {
	return message.NewPrinter(v.locale).Sprint(number.Decimal(math.Round(km2), number.MaxFractionDigits(0)))
}

// ShowEntry：按检索条目类型展示详情
func (v *Viewer) ShowEntry(ctx context.Context, e CorpusEntry) error {
	return v.ShowInfo(ctx, e.Name, e.ID, e.InfoKind())
}

// ToggleInfo：翻转信息面板的展开状态
func (v *Viewer) ToggleInfo() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ui.SetPanelActive(!v.ui.PanelActive())
}
