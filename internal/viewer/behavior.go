package viewer

import (
	"context"

	"atlas/internal/geo"
)

// locationBehavior：点要素；点击清除高亮并展示地点详情
type locationBehavior struct {
	icon Icon
}

func (b locationBehavior) RenderPoint(f geo.Feature) Marker {
	return Marker{Icon: b.icon, Title: f.Name(), Popup: f.Name()}
}

func (b locationBehavior) OnFeatureClick(ctx context.Context, v *Viewer, s Shape) error {
	if err := v.SetHighlightedRegion(nil); err != nil {
		return err
	}
	f := s.Feature()
	return v.ShowInfo(ctx, f.Name(), f.ID(), InfoLocation)
}

// boundaryBehavior：边界面；点击高亮该区域并展示区域详情
type boundaryBehavior struct{}

func (boundaryBehavior) RenderPoint(f geo.Feature) Marker {
	return Marker{Title: f.Name()}
}

func (boundaryBehavior) OnFeatureClick(ctx context.Context, v *Viewer, s Shape) error {
	if err := v.SetHighlightedRegion(s); err != nil {
		return err
	}
	f := s.Feature()
	return v.ShowInfo(ctx, f.Name(), f.ID(), InfoRegions)
}
