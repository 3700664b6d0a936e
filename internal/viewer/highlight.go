package viewer

import "fmt"

// HighlightColor：高亮区域的描边颜色
const HighlightColor = "red"

// 文档注释：设置高亮区域
// 约束：同一时刻至多一个高亮；旧高亮经边界图层的 ResetStyle 复位；nil 表示清除，
// 无高亮时清除为空操作。只持有边界图层内图形的引用，不拥有几何。
func (v *Viewer) SetHighlightedRegion(s Shape) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.registry.get(Boundary)
	if s != nil && !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, Boundary)
	}
	if v.highlighted != nil && ok {
		entry.layer.ResetStyle(v.highlighted)
	}
	v.highlighted = s
	if s != nil {
		s.BringToFront()
		s.SetStyle(Style{Color: HighlightColor})
	}
	return nil
}

// Highlighted：当前高亮图形，无则为 nil
func (v *Viewer) Highlighted() Shape {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.highlighted
}
