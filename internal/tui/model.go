package tui

import (
	"context"
	"errors"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"atlas/internal/geo"
	"atlas/internal/logger"
	"atlas/internal/mapview"
	"atlas/internal/viewer"
)

const searchLimit = 8

type loadDoneMsg struct{ err error }

type actionDoneMsg struct {
	action string
	err    error
}

// bounds：地图视野（经纬度范围）
type bounds struct {
	minLon, minLat, maxLon, maxLat float64
}

func (b bounds) empty() bool { return b.maxLon <= b.minLon || b.maxLat <= b.minLat }

func (b bounds) center() geo.Point {
	return geo.Point{Lat: (b.minLat + b.maxLat) / 2, Lon: (b.minLon + b.maxLon) / 2}
}

var defaultBounds = bounds{minLon: -30, minLat: -30, maxLon: 30, maxLat: 30}

// 文档注释：终端交互模型
// 背景：网络相关操作（加载、点击、检索跳转）以 tea.Cmd 异步执行，结果经消息回到 Update；
// 图层切换与面板切换是本地操作，直接同步执行。
type Model struct {
	ctx     context.Context
	viewer  *viewer.Viewer
	surface *mapview.Surface
	panel   *Panel

	width, height int
	view          bounds
	cursor        geo.Point

	loading   bool
	busy      bool
	searching bool
	query     string
	results   []viewer.CorpusEntry
	sel       int

	status    string
	statusErr bool
}

func New(ctx context.Context, v *viewer.Viewer, s *mapview.Surface, p *Panel) Model {
	return Model{
		ctx:     ctx,
		viewer:  v,
		surface: s,
		panel:   p,
		width:   80,
		height:  24,
		view:    defaultBounds,
		cursor:  defaultBounds.center(),
		loading: true,
		status:  "Loading layers...",
	}
}

func (m Model) Init() tea.Cmd {
	return loadCmd(m.ctx, m.viewer)
}

func loadCmd(ctx context.Context, v *viewer.Viewer) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{err: v.LoadAll(ctx)}
	}
}

func clickCmd(ctx context.Context, v *viewer.Viewer, pt geo.Point) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: "click", err: v.Click(ctx, pt)}
	}
}

func entryCmd(ctx context.Context, v *viewer.Viewer, e viewer.CorpusEntry) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: "search", err: v.ShowEntry(ctx, e)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.panel.SetColumns(msg.Width)
		return m, nil
	case loadDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Load failed: " + msg.err.Error())
			return m, nil
		}
		if b := fitBounds(m.surface.Present()); !b.empty() {
			m.view = b
			m.cursor = b.center()
		}
		m.setStatus("Loaded " + strconv.Itoa(len(m.viewer.Corpus())) + " entries.")
		return m, nil
	case actionDoneMsg:
		m.busy = false
		switch {
		case errors.Is(msg.err, viewer.ErrNoFeature):
			m.setStatus("Nothing here.")
		case msg.err != nil:
			logger.L().Warn("tui_action_error", "action", msg.action, "err", msg.err)
			m.setError("Lookup failed: " + msg.err.Error())
		default:
			m.setStatus("")
		}
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}
	stepLon := (m.view.maxLon - m.view.minLon) / 40
	stepLat := (m.view.maxLat - m.view.minLat) / 20
	switch key {
	case "up", "k":
		m.cursor.Lat = clamp(m.cursor.Lat+stepLat, m.view.minLat, m.view.maxLat)
	case "down", "j":
		m.cursor.Lat = clamp(m.cursor.Lat-stepLat, m.view.minLat, m.view.maxLat)
	case "left", "h":
		m.cursor.Lon = clamp(m.cursor.Lon-stepLon, m.view.minLon, m.view.maxLon)
	case "right", "l":
		m.cursor.Lon = clamp(m.cursor.Lon+stepLon, m.view.minLon, m.view.maxLon)
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.setStatus("Loading...")
		return m, clickCmd(m.ctx, m.viewer, m.cursor)
	case "i":
		m.viewer.ToggleInfo()
	case "/":
		m.searching = true
		m.query = ""
		m.results = nil
		m.sel = 0
	case "1", "2", "3", "4", "5", "6":
		n, _ := strconv.Atoi(key)
		c := viewer.AllCategories()[n-1]
		if err := m.viewer.ToggleLayer(c); err != nil {
			m.setError(err.Error())
		} else {
			m.setStatus("")
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		if m.sel < 0 || m.sel >= len(m.results) {
			return m, nil
		}
		m.busy = true
		m.setStatus("Loading...")
		return m, entryCmd(m.ctx, m.viewer, m.results[m.sel])
	case tea.KeyUp:
		if m.sel > 0 {
			m.sel--
		}
		return m, nil
	case tea.KeyDown:
		if m.sel < len(m.results)-1 {
			m.sel++
		}
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	default:
		return m, nil
	}
	m.results = m.viewer.Search(m.query, searchLimit)
	m.sel = 0
	return m, nil
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// fitBounds：按当前可见要素计算视野，四周留 5% 边距
func fitBounds(views []mapview.LayerView) bounds {
	b := bounds{minLon: 180, minLat: 90, maxLon: -180, maxLat: -90}
	grow := func(lon, lat float64) {
		b.minLon = min(b.minLon, lon)
		b.minLat = min(b.minLat, lat)
		b.maxLon = max(b.maxLon, lon)
		b.maxLat = max(b.maxLat, lat)
	}
	for _, lv := range views {
		for _, sv := range lv.Shapes {
			if sv.IsMarker {
				grow(sv.Point.Lon, sv.Point.Lat)
				continue
			}
			for _, p := range sv.Polygons {
				grow(p.BBox[0], p.BBox[1])
				grow(p.BBox[2], p.BBox[3])
			}
		}
	}
	if b.empty() {
		return b
	}
	padLon := (b.maxLon - b.minLon) * 0.05
	padLat := (b.maxLat - b.minLat) * 0.05
	return bounds{minLon: b.minLon - padLon, minLat: b.minLat - padLat, maxLon: b.maxLon + padLon, maxLat: b.maxLat + padLat}
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}
