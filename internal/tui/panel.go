// 包 tui：终端界面，实现 viewer.UI 并基于 bubbletea 驱动交互
package tui

import (
	"fmt"
	"sync"

	"atlas/internal/viewer"
)

// CellWidthPx：终端单元格折算的像素宽度，视口宽度按此换算后与面板展开阈值比较
const CellWidthPx = 8

// 文档注释：界面状态（信息面板 + 分类指示器）
// 约束：编排层在锁内外均可能调用，所有字段受 mu 保护；指示器集合在构造时固定。
type Panel struct {
	mu         sync.Mutex
	title      string
	content    []viewer.Block
	active     bool
	indicators map[string]bool
	cols       int
}

// NewPanel：为全部分类建立指示器，初始均为未激活
func NewPanel(cols int) *Panel {
	p := &Panel{indicators: make(map[string]bool), cols: cols}
	for _, c := range viewer.AllCategories() {
		p.indicators[c.ToggleID()] = false
	}
	return p
}

func (p *Panel) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

func (p *Panel) ClearContent() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = nil
}

func (p *Panel) AppendContent(b viewer.Block) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = append(p.content, b)
}

func (p *Panel) PanelActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Panel) SetPanelActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = active
}

func (p *Panel) HasIndicator(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.indicators[id]
	return ok
}

// ToggleIndicator：翻转并返回新状态；未知标识返回 viewer.ErrSurfaceMissing
func (p *Panel) ToggleIndicator(id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur, ok := p.indicators[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", viewer.ErrSurfaceMissing, id)
	}
	p.indicators[id] = !cur
	return !cur, nil
}

// ViewportWidth：终端列数折算为像素
func (p *Panel) ViewportWidth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cols * CellWidthPx
}

// SetColumns：窗口尺寸变化时更新
func (p *Panel) SetColumns(cols int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cols = cols
}

// PanelView：渲染快照
type PanelView struct {
	Title      string
	Content    []viewer.Block
	Active     bool
	Indicators map[string]bool
}

func (p *Panel) Snapshot() PanelView {
	p.mu.Lock()
	defer p.mu.Unlock()
	ind := make(map[string]bool, len(p.indicators))
	for k, v := range p.indicators {
		ind[k] = v
	}
	return PanelView{
		Title:      p.title,
		Content:    append([]viewer.Block(nil), p.content...),
		Active:     p.active,
		Indicators: ind,
	}
}
