package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"atlas/internal/geo"
)

type fakeAPI struct {
	mu         sync.Mutex
	calls      []string
	locations  map[Category]geo.FeatureCollection
	boundaries geo.FeatureCollection
	fail       map[string]error
	size       float64
	castles    int
	details    map[int64]Details
	// gate 中存在的 id 在 LocationDetails 内等待放行，started 收到进入信号
	gate    map[int64]chan struct{}
	started chan int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		locations: map[Category]geo.FeatureCollection{},
		fail:      map[string]error{},
		details:   map[int64]Details{},
		gate:      map[int64]chan struct{}{},
		started:   make(chan int64, 8),
	}
}

func (a *fakeAPI) record(op string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, op)
	return a.fail[op]
}

func (a *fakeAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeAPI) Locations(ctx context.Context, c Category) (geo.FeatureCollection, error) {
	if err := a.record("locations:" + string(c)); err != nil {
		return geo.FeatureCollection{}, err
	}
	return a.locations[c], nil
}

func (a *fakeAPI) Boundaries(ctx context.Context) (geo.FeatureCollection, error) {
	if err := a.record("boundaries"); err != nil {
		return geo.FeatureCollection{}, err
	}
	return a.boundaries, nil
}

func (a *fakeAPI) RegionSize(ctx context.Context, id int64) (float64, error) {
	if err := a.record("region_size"); err != nil {
		return 0, err
	}
	return a.size, nil
}

func (a *fakeAPI) CastleCount(ctx context.Context, id int64) (int, error) {
	if err := a.record("castle_count"); err != nil {
		return 0, err
	}
	return a.castles, nil
}

func (a *fakeAPI) RegionDetails(ctx context.Context, id int64) (Details, error) {
	if err := a.record("region_details"); err != nil {
		return Details{}, err
	}
	return a.details[id], nil
}

func (a *fakeAPI) LocationDetails(ctx context.Context, id int64) (Details, error) {
	if err := a.record("location_details"); err != nil {
		return Details{}, err
	}
	a.mu.Lock()
	ch := a.gate[id]
	a.mu.Unlock()
	if ch != nil {
		a.started <- id
		select {
		case <-ch:
		case <-ctx.Done():
			return Details{}, ctx.Err()
		}
	}
	return a.details[id], nil
}

type fakeShape struct {
	f      geo.Feature
	style  Style
	front  int
	resets int
}

func (s *fakeShape) Feature() geo.Feature { return s.f }
func (s *fakeShape) SetStyle(st Style)    { s.style = st }
func (s *fakeShape) BringToFront()        { s.front++ }

type fakeLayer struct {
	name   string
	shapes []*fakeShape
}

func (l *fakeLayer) ResetStyle(s Shape) {
	if fs, ok := s.(*fakeShape); ok {
		fs.style = Style{}
		fs.resets++
	}
}

type fakeSurface struct {
	built   []*fakeLayer
	present map[*fakeLayer]bool
	failOn  string
	markers []Marker
	pick    struct {
		layer *fakeLayer
		shape *fakeShape
	}
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{present: map[*fakeLayer]bool{}}
}

func (s *fakeSurface) BuildLayer(name string, fc geo.FeatureCollection, r PointRenderer) (Layer, error) {
	if name == s.failOn {
		return nil, errors.New("bad geometry")
	}
	l := &fakeLayer{name: name}
	for _, f := range fc.Features {
		l.shapes = append(l.shapes, &fakeShape{f: f})
		if f.Geometry.IsPoint() {
			s.markers = append(s.markers, r.RenderPoint(f))
		}
	}
	s.built = append(s.built, l)
	return l, nil
}

func (s *fakeSurface) HasLayer(l Layer) bool { return s.present[l.(*fakeLayer)] }
func (s *fakeSurface) AddLayer(l Layer)      { s.present[l.(*fakeLayer)] = true }
func (s *fakeSurface) RemoveLayer(l Layer)   { delete(s.present, l.(*fakeLayer)) }

func (s *fakeSurface) Pick(pt geo.Point) (Layer, Shape, bool) {
	if s.pick.layer == nil {
		return nil, nil, false
	}
	return s.pick.layer, s.pick.shape, true
}

func (s *fakeSurface) layer(name string) *fakeLayer {
	for _, l := range s.built {
		if l.name == name {
			return l
		}
	}
	return nil
}

type fakeUI struct {
	mu         sync.Mutex
	title      string
	content    []Block
	active     bool
	width      int
	indicators map[string]bool
}

func newFakeUI(width int) *fakeUI {
	u := &fakeUI{width: width, indicators: map[string]bool{}}
	for _, c := range AllCategories() {
		u.indicators[c.ToggleID()] = false
	}
	return u
}

func (u *fakeUI) SetTitle(t string) { u.mu.Lock(); u.title = t; u.mu.Unlock() }
func (u *fakeUI) ClearContent()     { u.mu.Lock(); u.content = nil; u.mu.Unlock() }
func (u *fakeUI) AppendContent(b Block) {
	u.mu.Lock()
	u.content = append(u.content, b)
	u.mu.Unlock()
}
func (u *fakeUI) PanelActive() bool       { u.mu.Lock(); defer u.mu.Unlock(); return u.active }
func (u *fakeUI) SetPanelActive(a bool)   { u.mu.Lock(); u.active = a; u.mu.Unlock() }
func (u *fakeUI) ViewportWidth() int      { u.mu.Lock(); defer u.mu.Unlock(); return u.width }
func (u *fakeUI) HasIndicator(id string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.indicators[id]
	return ok
}

func (u *fakeUI) ToggleIndicator(id string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	v, ok := u.indicators[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSurfaceMissing, id)
	}
	u.indicators[id] = !v
	return !v, nil
}

func (u *fakeUI) Content() []Block {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Block(nil), u.content...)
}

type fakeSearch struct {
	corpus []CorpusEntry
}

func (s *fakeSearch) Search(q string, limit int) []CorpusEntry {
	var out []CorpusEntry
	for _, e := range s.corpus {
		if e.Name == q {
			out = append(out, e)
		}
	}
	return out
}

func pointFeature(id int64, name, typ string, lat, lon float64) geo.Feature {
	props := map[string]any{"id": float64(id), "name": name}
	if typ != "" {
		props["type"] = typ
	}
	return geo.Feature{Type: "Feature", Properties: props, Geometry: geo.PointGeometry(geo.Point{Lat: lat, Lon: lon})}
}

func regionFeature(id int64, name string) geo.Feature {
	ring := []geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}}
	return geo.Feature{
		Type:       "Feature",
		Properties: map[string]any{"id": float64(id), "name": name, "type": "region"},
		Geometry:   geo.PolygonGeometry(ring),
	}
}
