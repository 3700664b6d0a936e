// 包 geo：地图要素的最小几何模型与 GeoJSON 承载结构，供图层构建、点击命中与反查共用
package geo

import (
	"encoding/json"
	"strconv"
)

// 文档注释：GeoJSON 要素集合
// 约束：仅承载 type/features；要素顺序即数据源返回顺序，调用方依赖该顺序构建检索语料。
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// 文档注释：单个地理要素（点或面）
// 约束：properties 保持原样透传；name/id/type 通过访问器读取，缺失时返回零值。
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   Geometry       `json:"geometry"`
}

// Geometry：坐标延迟解析，按 type 分派到 Point/Polygon/MultiPolygon
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Polygon：按 GeoJSON 约定的环集合，第一环是外环，其后为洞
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
}

// 点坐标（经纬度）
type Point struct {
	Lat float64
	Lon float64
}

// NewCollection：构造带 type 的要素集合
func NewCollection(fs []Feature) FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: fs}
}

func (f Feature) Name() string { return getStr(f.Properties, "name") }

func (f Feature) Kind() string { return getStr(f.Properties, "type") }

// ID：读取数值主键；JSON 解码后的 float64、json.Number 与数字字符串均可接受
func (f Feature) ID() int64 {
	if f.Properties == nil {
		return 0
	}
	switch x := f.Properties["id"].(type) {
	case float64:
		return int64(x)
	case float32:
		return int64(x)
	case int:
		return int64(x)
	case int64:
		return x
	case json.Number:
		n, _ := x.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}

// CloneProperties：浅拷贝属性表，调用方可安全追加字段
func (f Feature) CloneProperties() map[string]any {
	out := make(map[string]any, len(f.Properties)+1)
	for k, v := range f.Properties {
		out[k] = v
	}
	return out
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}
