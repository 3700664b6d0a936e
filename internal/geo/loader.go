package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// 文档注释：从文件读取 GeoJSON
// 约束：接受 FeatureCollection 或单个 Feature（包装为集合）；其他 type 视为错误。
func LoadCollection(path string) (FeatureCollection, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FeatureCollection{}, err
	}
	return ParseCollection(b)
}

func ParseCollection(b []byte) (FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return FeatureCollection{}, err
	}
	switch strings.ToLower(head.Type) {
	case "featurecollection":
		var fc FeatureCollection
		if err := json.Unmarshal(b, &fc); err != nil {
			return FeatureCollection{}, err
		}
		return fc, nil
	case "feature":
		var f Feature
		if err := json.Unmarshal(b, &f); err != nil {
			return FeatureCollection{}, err
		}
		return NewCollection([]Feature{f}), nil
	}
	return FeatureCollection{}, fmt.Errorf("unexpected geojson type %q", head.Type)
}

// LoadDir：扫描目录下的 *.geojson，键为去掉扩展名的小写文件名
func LoadDir(dir string) (map[string]FeatureCollection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]FeatureCollection)
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".geojson") {
			continue
		}
		fc, err := LoadCollection(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))] = fc
	}
	return out, nil
}
