package viewer

import "atlas/internal/geo"

// KingdomType：边界要素在语料中的固定类型
const KingdomType = "Kingdom"

// CorpusEntry：检索语料条目 {name, type, id, ...properties}
type CorpusEntry struct {
	Name       string
	Type       string
	ID         int64
	Properties map[string]any
}

// InfoKind：条目对应的信息面板类型
func (e CorpusEntry) InfoKind() InfoKind {
	if e.Type == KingdomType {
		return InfoRegions
	}
	return InfoLocation
}

func locationEntries(c Category, fc geo.FeatureCollection) []CorpusEntry {
	out := make([]CorpusEntry, 0, len(fc.Features))
	for _, f := range fc.Features {
		typ := f.Kind()
		if typ == "" {
			typ = string(c)
		}
		out = append(out, CorpusEntry{Name: f.Name(), Type: typ, ID: f.ID(), Properties: f.CloneProperties()})
	}
	return out
}

// 边界条目一律标记为 Kingdom，覆盖属性中原有的 type
func boundaryEntries(fc geo.FeatureCollection) []CorpusEntry {
	out := make([]CorpusEntry, 0, len(fc.Features))
	for _, f := range fc.Features {
		props := f.CloneProperties()
		props["type"] = KingdomType
		out = append(out, CorpusEntry{Name: f.Name(), Type: KingdomType, ID: f.ID(), Properties: props})
	}
	return out
}

// Corpus：语料副本；加载完成后不再变化
func (v *Viewer) Corpus() []CorpusEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]CorpusEntry(nil), v.corpus...)
}

// Search：委托给加载时构建的检索协作方；加载前返回 nil
func (v *Viewer) Search(q string, limit int) []CorpusEntry {
	v.mu.Lock()
	s := v.search
	v.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Search(q, limit)
}
