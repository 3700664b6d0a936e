package viewer

import (
	"fmt"

	"atlas/internal/logger"
	"atlas/internal/metrics"
)

// 文档注释：切换分类图层可见性
// 约束：分类必须已注册，否则返回 ErrUnknownCategory；先翻转界面指示器再翻转地图存在性，
// 指示器缺失时两者都不变。不提供直接设置可见的操作。
func (v *Viewer) ToggleLayer(c Category) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.toggleLocked(c)
}

func (v *Viewer) toggleLocked(c Category) error {
	e, ok := v.registry.get(c)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}
	active, err := v.ui.ToggleIndicator(c.ToggleID())
	if err != nil {
		return fmt.Errorf("toggle %s: %w", c, err)
	}
	if v.surface.HasLayer(e.layer) {
		v.surface.RemoveLayer(e.layer)
	} else {
		v.surface.AddLayer(e.layer)
	}
	metrics.LayerTogglesTotal.WithLabelValues(string(c)).Inc()
	logger.L().Debug("viewer_layer_toggle", "category", c, "indicator_active", active, "visible", v.surface.HasLayer(e.layer))
	return nil
}

// Visible：分类图层当前是否在地图上
func (v *Viewer) Visible(c Category) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.registry.get(c)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}
	return v.surface.HasLayer(e.layer), nil
}
