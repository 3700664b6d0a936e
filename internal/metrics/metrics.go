package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000}

var (
	// 数据接口服务端
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_api_requests_total",
		Help: "Total number of data API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atlas_api_request_duration_ms",
		Help:    "Data API request duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"route"})
	RequestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_api_request_errors_total",
		Help: "Data API responses with a non-2xx status by route",
	}, []string{"route", "status"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_api_cache_hits_total",
		Help: "Total response cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_api_cache_misses_total",
		Help: "Total response cache misses",
	})

	// 数据接口客户端
	ClientRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_client_requests_total",
		Help: "Total data API client calls by operation",
	}, []string{"op"})
	ClientFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_client_fail_total",
		Help: "Total failed data API client calls by operation",
	}, []string{"op"})
	ClientDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atlas_client_duration_ms",
		Help:    "Data API client call duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"op"})

	// 查看器编排
	LoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atlas_viewer_load_duration_ms",
		Help:    "Duration of the startup load of all layers",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	LoadFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_viewer_load_fail_total",
		Help: "Startup loads aborted by a fetch or build failure",
	})
	LayerTogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_viewer_layer_toggles_total",
		Help: "Layer visibility toggles by category",
	}, []string{"category"})
	InfoRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_viewer_info_requests_total",
		Help: "Info panel requests by entity kind",
	}, []string{"kind"})
	InfoStaleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_viewer_info_stale_total",
		Help: "Info panel responses discarded because a newer request superseded them",
	})
	InfoDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atlas_viewer_info_duration_ms",
		Help:    "Info panel population duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RequestErrorsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(ClientRequestsTotal)
	prometheus.MustRegister(ClientFailTotal)
	prometheus.MustRegister(ClientDurationMs)
	prometheus.MustRegister(LoadDurationMs)
	prometheus.MustRegister(LoadFailTotal)
	prometheus.MustRegister(LayerTogglesTotal)
	prometheus.MustRegister(InfoRequestsTotal)
	prometheus.MustRegister(InfoStaleTotal)
	prometheus.MustRegister(InfoDurationMs)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：数据接口服务挂载到 {API_BASE}/metrics；查看器在配置了监听地址时单独暴露。
func Handler() http.Handler { return promhttp.Handler() }
