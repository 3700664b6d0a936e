// 包 api：集中注册图集数据接口路由以解耦主入口，便于挂载到 API_BASE 前缀
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"atlas/internal/geo"
	"atlas/internal/logger"
	"atlas/internal/metrics"
	"atlas/internal/store"
	"atlas/internal/viewer"
)

// Backend：数据源，*store.Store 为生产实现
type Backend interface {
	Locations(ctx context.Context, typ string) (geo.FeatureCollection, error)
	Kingdoms(ctx context.Context) (geo.FeatureCollection, error)
	KingdomSize(ctx context.Context, id int64) (float64, error)
	CastleCount(ctx context.Context, id int64) (int, error)
	KingdomSummary(ctx context.Context, id int64) (store.Summary, error)
	LocationSummary(ctx context.Context, id int64) (store.Summary, error)
}

// 文档注释：接口服务
// 背景：所有读接口先查缓存，未命中时查询后端并写回；王国反查的定位器首次使用时从后端构建。
// 约束：非法 id 或未知类型返回 400；后端 ErrNotFound 返回 404；其他错误返回 500 且不写缓存。
type Server struct {
	backend Backend
	cache   Cache

	mu      sync.Mutex
	locator *geo.Locator
}

func NewServer(b Backend, c Cache) *Server {
	if c == nil {
		c = NewMemoryCache(1024, DefaultCacheTTL)
	}
	return &Server{backend: b, cache: c}
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
func BuildRoutes(s *Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /health", s.instrument("health", s.health))
	mux.Handle("GET /locations/{type}", s.instrument("locations", s.locations))
	mux.Handle("GET /locations/{id}/summary", s.instrument("location_summary", s.locationSummary))
	mux.Handle("GET /kingdoms", s.instrument("kingdoms", s.kingdoms))
	mux.Handle("GET /kingdoms/at", s.instrument("kingdom_at", s.kingdomAt))
	mux.Handle("GET /kingdoms/{id}/size", s.instrument("kingdom_size", s.kingdomSize))
	mux.Handle("GET /kingdoms/{id}/castles", s.instrument("kingdom_castles", s.kingdomCastles))
	mux.Handle("GET /kingdoms/{id}/summary", s.instrument("kingdom_summary", s.kingdomSummary))
	return mux
}

// httpError：携带状态码的处理错误
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(msg string) error { return &httpError{status: http.StatusBadRequest, msg: msg} }

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// instrument：统一计数、耗时与错误响应
func (s *Server) instrument(route string, fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		err := fn(w, r)
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(t0).Milliseconds()))
		if err == nil {
			return
		}
		status, msg := http.StatusInternalServerError, "internal error"
		var he *httpError
		switch {
		case errors.As(err, &he):
			status, msg = he.status, he.msg
		case errors.Is(err, store.ErrNotFound):
			status, msg = http.StatusNotFound, "not found"
		default:
			logger.L().Error("api_error", "route", route, "path", r.URL.Path, "err", err)
		}
		metrics.RequestErrorsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		writeJSON(w, status, map[string]string{"error": msg})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeBody(w, status, b)
}

func writeBody(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "public, max-age=3600")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// cached：读穿缓存；produce 出错时不写缓存
func (s *Server) cached(w http.ResponseWriter, r *http.Request, key string, produce func(ctx context.Context) (any, error)) error {
	ctx := r.Context()
	if b, ok := s.cache.Get(ctx, key); ok {
		metrics.CacheHitsTotal.Inc()
		writeBody(w, http.StatusOK, b)
		return nil
	}
	metrics.CacheMissesTotal.Inc()
	v, err := produce(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.cache.Set(ctx, key, b)
	writeBody(w, http.StatusOK, b)
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id")
	}
	return id, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

func (s *Server) locations(w http.ResponseWriter, r *http.Request) error {
	c, ok := viewer.ParseCategory(r.PathValue("type"))
	if !ok || c == viewer.Boundary {
		return badRequest("unknown location type")
	}
	return s.cached(w, r, "locations:"+string(c), func(ctx context.Context) (any, error) {
		return s.backend.Locations(ctx, string(c))
	})
}

func (s *Server) kingdoms(w http.ResponseWriter, r *http.Request) error {
	return s.cached(w, r, "kingdoms", func(ctx context.Context) (any, error) {
		return s.backend.Kingdoms(ctx)
	})
}

func (s *Server) kingdomSize(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	return s.cached(w, r, "kingdom_size:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		size, err := s.backend.KingdomSize(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]float64{"size": size}, nil
	})
}

func (s *Server) kingdomCastles(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	return s.cached(w, r, "kingdom_castles:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		n, err := s.backend.CastleCount(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]int{"count": n}, nil
	})
}

func (s *Server) kingdomSummary(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	return s.cached(w, r, "kingdom_summary:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		return s.backend.KingdomSummary(ctx, id)
	})
}

func (s *Server) locationSummary(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	return s.cached(w, r, "location_summary:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		return s.backend.LocationSummary(ctx, id)
	})
}

// kingdomAt：按经纬度反查所在王国；未命中返回 404
func (s *Server) kingdomAt(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return badRequest("invalid lat/lon")
	}
	loc, err := s.getLocator(r.Context())
	if err != nil {
		return err
	}
	f, ok := loc.Locate(geo.Point{Lat: lat, Lon: lon})
	if !ok {
		return store.ErrNotFound
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": f.ID(), "name": f.Name()})
	return nil
}

// getLocator：首次成功构建后复用；构建失败下次重试
func (s *Server) getLocator(ctx context.Context) (*geo.Locator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locator != nil {
		return s.locator, nil
	}
	fc, err := s.backend.Kingdoms(ctx)
	if err != nil {
		return nil, err
	}
	s.locator = geo.NewLocator(fc, time.Hour)
	logger.L().Info("locator_ready", "kingdoms", s.locator.Len())
	return s.locator, nil
}
