package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minLon, minLat, maxLon, maxLat float64) []Point {
	return []Point{
		{Lat: minLat, Lon: minLon},
		{Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon},
		{Lat: maxLat, Lon: minLon},
	}
}

func TestPolygonWithHole(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[
		[[0,0],[10,0],[10,10],[0,10],[0,0]],
		[[4,4],[6,4],[6,6],[4,6],[4,4]]]}`
	var g Geometry
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	polys, err := g.Polygons()
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.Equal(t, [4]float64{0, 0, 10, 10}, polys[0].BBox)

	assert.True(t, Contains(polys[0], Point{Lat: 2, Lon: 2}))
	assert.False(t, Contains(polys[0], Point{Lat: 5, Lon: 5}), "inside hole")
	assert.False(t, Contains(polys[0], Point{Lat: 20, Lon: 5}))
}

func TestMultiPolygon(t *testing.T) {
	raw := `{"type":"MultiPolygon","coordinates":[
		[[[0,0],[1,0],[1,1],[0,1],[0,0]]],
		[[[5,5],[6,5],[6,6],[5,6],[5,5]]]]}`
	var g Geometry
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	polys, err := g.Polygons()
	require.NoError(t, err)
	require.Len(t, polys, 2)
	assert.True(t, ContainsAny(polys, Point{Lat: 5.5, Lon: 5.5}))
	assert.False(t, ContainsAny(polys, Point{Lat: 3, Lon: 3}))
}

func TestGeometryPoint(t *testing.T) {
	g := PointGeometry(Point{Lat: 12.5, Lon: -3})
	p, err := g.Point()
	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 12.5, Lon: -3}, p)

	_, err = g.Polygons()
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}

func TestFeatureAccessors(t *testing.T) {
	var f Feature
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Feature","properties":{"name":"Winterfell","id":17,"type":"castle"},"geometry":null}`), &f))
	assert.Equal(t, "Winterfell", f.Name())
	assert.Equal(t, int64(17), f.ID())
	assert.Equal(t, "castle", f.Kind())

	f.Properties["id"] = "42"
	assert.Equal(t, int64(42), f.ID())
	assert.Equal(t, int64(0), Feature{}.ID())
}

func TestGeohash(t *testing.T) {
	assert.Equal(t, "ezs42", Geohash(Point{Lat: 42.6, Lon: -5.6}, 5))
	assert.Len(t, Geohash(Point{Lat: 1, Lon: 1}, 6), 6)
}

func TestPointIndexNearest(t *testing.T) {
	pts := []Point{{Lat: 0, Lon: 0}, {Lat: 10, Lon: 10}, {Lat: -5, Lon: 20}, {Lat: 3, Lon: 3}}
	ix := NewPointIndex(pts)
	i, d := ix.Nearest(Point{Lat: 9.9, Lon: 10.1})
	assert.Equal(t, 1, i)
	assert.Less(t, d, 20.0)

	i, _ = ix.Nearest(Point{Lat: 2.5, Lon: 2.8})
	assert.Equal(t, 3, i)

	empty := NewPointIndex(nil)
	i, _ = empty.Nearest(Point{})
	assert.Equal(t, -1, i)
}

func TestLocator(t *testing.T) {
	fc := NewCollection([]Feature{
		{Type: "Feature", Properties: map[string]any{"name": "The North", "id": float64(1)}, Geometry: PolygonGeometry(square(0, 10, 10, 20))},
		{Type: "Feature", Properties: map[string]any{"name": "Dorne", "id": float64(2)}, Geometry: PolygonGeometry(square(0, -10, 10, 0))},
		{Type: "Feature", Properties: map[string]any{"name": "Pin"}, Geometry: PointGeometry(Point{})},
	})
	l := NewLocator(fc, time.Minute)
	assert.Equal(t, 2, l.Len())

	f, ok := l.Locate(Point{Lat: 15, Lon: 5})
	require.True(t, ok)
	assert.Equal(t, "The North", f.Name())

	// second lookup is served from the geohash cache
	f, ok = l.Locate(Point{Lat: 15, Lon: 5})
	require.True(t, ok)
	assert.Equal(t, int64(1), f.ID())

	f, ok = l.Locate(Point{Lat: -5, Lon: 5})
	require.True(t, ok)
	assert.Equal(t, "Dorne", f.Name())

	_, ok = l.Locate(Point{Lat: 50, Lon: 50})
	assert.False(t, ok)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	fc := NewCollection([]Feature{{Type: "Feature", Properties: map[string]any{"name": "Braavos"}, Geometry: PointGeometry(Point{Lat: 1, Lon: 2})}})
	b, err := json.Marshal(fc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Locations.geojson"), b, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "single.geojson"), []byte(`{"type":"Feature","properties":{"name":"x"},"geometry":{"type":"Point","coordinates":[0,0]}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	out, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Braavos", out["locations"].Features[0].Name())
	assert.Len(t, out["single"].Features, 1)

	_, err = ParseCollection([]byte(`{"type":"Topology"}`))
	assert.Error(t, err)
}
