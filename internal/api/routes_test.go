package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/geo"
	"atlas/internal/store"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int
	fail  error
}

func newFakeBackend() *fakeBackend { return &fakeBackend{calls: map[string]int{}} }

func (b *fakeBackend) hit(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
	return b.fail
}

func (b *fakeBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *fakeBackend) Locations(ctx context.Context, typ string) (geo.FeatureCollection, error) {
	if err := b.hit("locations:" + typ); err != nil {
		return geo.FeatureCollection{}, err
	}
	return geo.NewCollection([]geo.Feature{{
		Type:       "Feature",
		Properties: map[string]any{"id": 1, "name": "Winterfell", "type": "Castle"},
		Geometry:   geo.PointGeometry(geo.Point{Lat: 10, Lon: 10}),
	}}), nil
}

func (b *fakeBackend) Kingdoms(ctx context.Context) (geo.FeatureCollection, error) {
	if err := b.hit("kingdoms"); err != nil {
		return geo.FeatureCollection{}, err
	}
	return geo.NewCollection([]geo.Feature{{
		Type:       "Feature",
		Properties: map[string]any{"id": 10, "name": "The North"},
		Geometry:   geo.PolygonGeometry([]geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 20}, {Lat: 20, Lon: 20}, {Lat: 20, Lon: 0}}),
	}}), nil
}

func (b *fakeBackend) KingdomSize(ctx context.Context, id int64) (float64, error) {
	if err := b.hit("size"); err != nil {
		return 0, err
	}
	if id != 10 {
		return 0, store.ErrNotFound
	}
	return 7500.4, nil
}

func (b *fakeBackend) CastleCount(ctx context.Context, id int64) (int, error) {
	if err := b.hit("castles"); err != nil {
		return 0, err
	}
	return 12, nil
}

func (b *fakeBackend) KingdomSummary(ctx context.Context, id int64) (store.Summary, error) {
	if err := b.hit("kingdom_summary"); err != nil {
		return store.Summary{}, err
	}
	return store.Summary{Summary: "Cold.", URL: "https://example.org/north"}, nil
}

func (b *fakeBackend) LocationSummary(ctx context.Context, id int64) (store.Summary, error) {
	if err := b.hit("location_summary"); err != nil {
		return store.Summary{}, err
	}
	return store.Summary{Summary: "Seat of House Stark.", URL: "https://example.org/wf"}, nil
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestRoutesServeAndCache(t *testing.T) {
	b := newFakeBackend()
	h := BuildRoutes(NewServer(b, NewMemoryCache(16, 0)))

	rec, body := get(t, h, "/kingdoms/10/size")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 7500.4, body["size"], 1e-9)
	_, _ = get(t, h, "/kingdoms/10/size")
	assert.Equal(t, 1, b.count("size"), "second request served from cache")

	_, body = get(t, h, "/kingdoms/10/castles")
	assert.Equal(t, float64(12), body["count"])

	_, body = get(t, h, "/kingdoms/10/summary")
	assert.Equal(t, "Cold.", body["summary"])
	assert.Equal(t, "https://example.org/north", body["url"])

	_, body = get(t, h, "/locations/1/summary")
	assert.Equal(t, "Seat of House Stark.", body["summary"])

	rec, body = get(t, h, "/locations/Castle")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FeatureCollection", body["type"])
	assert.Equal(t, 1, b.count("locations:castle"))

	_, body = get(t, h, "/kingdoms")
	assert.Len(t, body["features"], 1)

	_, body = get(t, h, "/health")
	assert.Equal(t, "ok", body["status"])
}

func TestRoutesErrors(t *testing.T) {
	b := newFakeBackend()
	h := BuildRoutes(NewServer(b, nil))

	rec, body := get(t, h, "/kingdoms/abc/size")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", body["error"])

	rec, _ = get(t, h, "/kingdoms/0/castles")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = get(t, h, "/locations/dragon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = get(t, h, "/locations/boundary")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = get(t, h, "/kingdoms/99/size")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", body["error"])

	b.fail = errors.New("db down")
	rec, body = get(t, h, "/kingdoms/10/summary")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", body["error"])

	b.fail = nil
	rec, _ = get(t, h, "/kingdoms/10/summary")
	assert.Equal(t, http.StatusOK, rec.Code, "failures are not cached")
}

func TestKingdomAt(t *testing.T) {
	b := newFakeBackend()
	h := BuildRoutes(NewServer(b, nil))

	rec, body := get(t, h, "/kingdoms/at?lat=5&lon=5")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The North", body["name"])
	assert.Equal(t, float64(10), body["id"])

	rec, _ = get(t, h, "/kingdoms/at?lat=-5&lon=-5")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get(t, h, "/kingdoms/at?lat=95&lon=5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 1, b.count("kingdoms"), "locator is built once")
}
