package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"atlas/internal/geo"
	"atlas/internal/viewer"
)

const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

const panelWidth = 36

var (
	titleStyle   = lipgloss.NewStyle().Foreground(colorLavender).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
	textStyle    = lipgloss.NewStyle().Foreground(colorText)
	linkStyle    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	statusStyle  = lipgloss.NewStyle().Foreground(colorOverlay1)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	cursorStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	onStyle      = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	offStyle     = lipgloss.NewStyle().Foreground(colorSurface1)
	selStyle     = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
	panelBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	markerGlyphs = map[string]rune{
		string(viewer.Castle):   'C',
		string(viewer.City):     'o',
		string(viewer.Town):     '.',
		string(viewer.Ruin):     'x',
		string(viewer.Landmark): '*',
	}
)

// styleColor：把样式中的颜色名映射到终端调色板，# 开头的值原样使用
func styleColor(c string) lipgloss.Color {
	switch {
	case strings.HasPrefix(c, "#"):
		return lipgloss.Color(c)
	case c == viewer.HighlightColor:
		return colorRed
	default:
		return colorBlue
	}
}

func (m Model) View() string {
	pv := m.panel.Snapshot()
	rows := max(m.height-4, 4)
	cols := m.width
	if pv.Active {
		cols -= panelWidth + 4
	}
	cols = max(cols, 10)

	body := m.renderMap(cols, rows)
	if pv.Active {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panelBox.Width(panelWidth).Render(renderPanel(pv)))
	}
	lines := []string{body, renderIndicators(pv)}
	if m.searching {
		lines = append(lines, m.renderSearch())
	}
	if m.statusErr {
		lines = append(lines, errorStyle.Render(m.status))
	} else {
		lines = append(lines, statusStyle.Render(m.status+"  arrows move · enter select · 1-6 layers · i info · / search · q quit"))
	}
	return strings.Join(lines, "\n")
}

type cell struct {
	r     rune
	color lipgloss.Color
}

// renderMap：按视野把可见图层栅格化为字符网格；后绘制的图层与图形覆盖先绘制的
func (m Model) renderMap(cols, rows int) string {
	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	lonSpan := m.view.maxLon - m.view.minLon
	latSpan := m.view.maxLat - m.view.minLat
	toCell := func(p geo.Point) (int, int, bool) {
		x := int((p.Lon - m.view.minLon) / lonSpan * float64(cols))
		y := int((m.view.maxLat - p.Lat) / latSpan * float64(rows))
		return x, y, x >= 0 && x < cols && y >= 0 && y < rows
	}
	views := m.surface.Present()
	for _, lv := range views {
		for _, sv := range lv.Shapes {
			if sv.IsMarker {
				continue
			}
			col := styleColor(sv.Style.Color)
			for y := 0; y < rows; y++ {
				lat := m.view.maxLat - (float64(y)+0.5)/float64(rows)*latSpan
				for x := 0; x < cols; x++ {
					lon := m.view.minLon + (float64(x)+0.5)/float64(cols)*lonSpan
					if geo.ContainsAny(sv.Polygons, geo.Point{Lat: lat, Lon: lon}) {
						grid[y][x] = cell{r: '░', color: col}
					}
				}
			}
		}
	}
	// 点标记画在所有面之上，与命中顺序一致
	for _, lv := range views {
		glyph, ok := markerGlyphs[lv.Name]
		if !ok {
			glyph = '+'
		}
		for _, sv := range lv.Shapes {
			if !sv.IsMarker {
				continue
			}
			if x, y, in := toCell(sv.Point); in {
				grid[y][x] = cell{r: glyph, color: colorText}
			}
		}
	}

	var b strings.Builder
	cx, cy, cursorIn := toCell(m.cursor)
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x, c := range row {
			if cursorIn && x == cx && y == cy {
				b.WriteString(cursorStyle.Render("◎"))
				continue
			}
			if c.color == "" {
				b.WriteRune(c.r)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(c.color).Render(string(c.r)))
		}
	}
	return b.String()
}

func renderPanel(pv PanelView) string {
	lines := []string{titleStyle.Render(pv.Title)}
	for _, blk := range pv.Content {
		var line string
		if blk.Label != "" {
			line = labelStyle.Render(blk.Label+": ") + textStyle.Render(blk.Text)
		} else {
			line = textStyle.Render(blk.Text)
		}
		lines = append(lines, line)
		if blk.Link != nil {
			lines = append(lines, linkStyle.Render(blk.Link.Text+" "+blk.Link.Href))
		}
	}
	return strings.Join(lines, "\n")
}

func renderIndicators(pv PanelView) string {
	parts := make([]string, 0, len(viewer.AllCategories()))
	for i, c := range viewer.AllCategories() {
		label := strconv.Itoa(i+1) + " " + string(c)
		if pv.Indicators[c.ToggleID()] {
			parts = append(parts, onStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, offStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderSearch() string {
	lines := []string{selStyle.Render("/") + textStyle.Render(m.query)}
	for i, e := range m.results {
		line := e.Name + " (" + e.Type + ")"
		if i == m.sel {
			lines = append(lines, selStyle.Render("> "+line))
		} else {
			lines = append(lines, textStyle.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}
