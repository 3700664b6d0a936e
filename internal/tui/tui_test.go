package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/geo"
	"atlas/internal/mapview"
	"atlas/internal/search"
	"atlas/internal/viewer"
)

type stubAPI struct{}

func point(id int64, name string, lat, lon float64) geo.Feature {
	return geo.Feature{Type: "Feature", Properties: map[string]any{"id": float64(id), "name": name}, Geometry: geo.PointGeometry(geo.Point{Lat: lat, Lon: lon})}
}

func (stubAPI) Locations(ctx context.Context, c viewer.Category) (geo.FeatureCollection, error) {
	switch c {
	case viewer.Castle:
		return geo.NewCollection([]geo.Feature{point(1, "Winterfell", 10, 10)}), nil
	case viewer.City:
		return geo.NewCollection([]geo.Feature{point(2, "King's Landing", -10, -10), point(3, "White Harbor", 5, 5)}), nil
	}
	return geo.NewCollection(nil), nil
}

func (stubAPI) Boundaries(ctx context.Context) (geo.FeatureCollection, error) {
	north := geo.Feature{Type: "Feature", Properties: map[string]any{"id": float64(10), "name": "The North"},
		Geometry: geo.PolygonGeometry([]geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 20}, {Lat: 20, Lon: 20}, {Lat: 20, Lon: 0}})}
	return geo.NewCollection([]geo.Feature{north}), nil
}

func (stubAPI) RegionSize(ctx context.Context, id int64) (float64, error) { return 1200, nil }

func (stubAPI) CastleCount(ctx context.Context, id int64) (int, error) { return 3, nil }

func (stubAPI) RegionDetails(ctx context.Context, id int64) (viewer.Details, error) {
	return viewer.Details{SummaryText: "Cold.", URL: "https://example.org/north"}, nil
}

func (stubAPI) LocationDetails(ctx context.Context, id int64) (viewer.Details, error) {
	return viewer.Details{SummaryText: "Seat of House Stark.", URL: "https://example.org/wf"}, nil
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func newLoadedModel(t *testing.T) (Model, *viewer.Viewer, *Panel) {
	t.Helper()
	panel := NewPanel(100)
	surface := mapview.New(0)
	v, err := viewer.New(stubAPI{}, surface, panel, search.New, viewer.Options{})
	require.NoError(t, err)
	m := New(context.Background(), v, surface, panel)
	m, _ = step(t, m, m.Init()())
	require.False(t, m.loading)
	require.False(t, m.statusErr, m.status)
	return m, v, panel
}

func TestPanelPort(t *testing.T) {
	p := NewPanel(80)
	for _, c := range viewer.AllCategories() {
		assert.True(t, p.HasIndicator(c.ToggleID()))
	}
	assert.False(t, p.HasIndicator("dragon-toggle"))
	on, err := p.ToggleIndicator("castle-toggle")
	require.NoError(t, err)
	assert.True(t, on)
	_, err = p.ToggleIndicator("dragon-toggle")
	assert.ErrorIs(t, err, viewer.ErrSurfaceMissing)

	p.SetTitle("x")
	p.AppendContent(viewer.Block{Text: "a"})
	p.ClearContent()
	p.AppendContent(viewer.Block{Text: "b"})
	snap := p.Snapshot()
	assert.Equal(t, "x", snap.Title)
	assert.Equal(t, []viewer.Block{{Text: "b"}}, snap.Content)
	assert.Equal(t, 640, p.ViewportWidth())
}

func TestModelLoadsAndTogglesLayers(t *testing.T) {
	m, v, panel := newLoadedModel(t)
	snap := panel.Snapshot()
	assert.True(t, snap.Indicators["city-toggle"])
	assert.True(t, snap.Indicators["boundary-toggle"])
	assert.False(t, snap.Indicators["castle-toggle"])

	m, _ = step(t, m, runes("1"))
	vis, err := v.Visible(viewer.Castle)
	require.NoError(t, err)
	assert.True(t, vis)
	assert.True(t, panel.Snapshot().Indicators["castle-toggle"])

	m, _ = step(t, m, runes("6"))
	vis, _ = v.Visible(viewer.Boundary)
	assert.False(t, vis)
	assert.NotEmpty(t, m.View())
}

func TestModelClickShowsRegion(t *testing.T) {
	m, v, panel := newLoadedModel(t)
	m.cursor = geo.Point{Lat: 5, Lon: 15}
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	m, _ = step(t, m, cmd())
	assert.False(t, m.busy)
	assert.False(t, m.statusErr, m.status)

	snap := panel.Snapshot()
	assert.Equal(t, "The North", snap.Title)
	require.Len(t, snap.Content, 3)
	assert.Equal(t, "3", snap.Content[1].Text)
	assert.True(t, snap.Active)
	require.NotNil(t, v.Highlighted())
	assert.Contains(t, m.View(), "The North")

	m.cursor = geo.Point{Lat: -25, Lon: 25}
	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = step(t, m, cmd())
	assert.Equal(t, "Nothing here.", m.status)
}

func TestModelClickMarkerInsideRegion(t *testing.T) {
	m, v, panel := newLoadedModel(t)
	m.cursor = geo.Point{Lat: 5, Lon: 15}
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = step(t, m, cmd())
	require.NotNil(t, v.Highlighted())

	m.cursor = geo.Point{Lat: 5, Lon: 5}
	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	assert.False(t, m.statusErr, m.status)

	snap := panel.Snapshot()
	assert.Equal(t, "White Harbor", snap.Title)
	require.Len(t, snap.Content, 1)
	assert.Equal(t, "Seat of House Stark.", snap.Content[0].Text)
	assert.Nil(t, v.Highlighted())
}

func TestModelSearchOpensEntry(t *testing.T) {
	m, _, panel := newLoadedModel(t)
	m, _ = step(t, m, runes("/"))
	require.True(t, m.searching)
	m, _ = step(t, m, runes("wint"))
	require.Len(t, m.results, 1)
	assert.Equal(t, "Winterfell", m.results[0].Name)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.searching)
	m, _ = step(t, m, cmd())

	snap := panel.Snapshot()
	assert.Equal(t, "Winterfell", snap.Title)
	require.Len(t, snap.Content, 1)
	assert.Equal(t, "Seat of House Stark.", snap.Content[0].Text)

	m, _ = step(t, m, runes("i"))
	assert.False(t, panel.PanelActive())
}

func TestModelQuit(t *testing.T) {
	m := New(context.Background(), nil, mapview.New(0), NewPanel(80))
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
