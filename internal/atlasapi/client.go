// 包 atlasapi：图集数据接口的 HTTP 客户端，实现 viewer.DataAPI
package atlasapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atlas/internal/geo"
	"atlas/internal/logger"
	"atlas/internal/metrics"
	"atlas/internal/viewer"
)

// DefaultTimeout：未传入客户端时的单次请求超时
const DefaultTimeout = 10 * time.Second

// StatusError：非 2xx 响应
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

// IsNotFound：判定是否为 404
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// 文档注释：数据接口客户端
// 背景：基于共享 http.Client 的只读 GET 调用；每个操作记录耗时与失败指标。
// 约束：不重试，不缓存；失败原样返回给编排层。
type Client struct {
	base   string
	client *http.Client
}

// New：base 为接口根地址（例如 http://localhost:5000/api）；client 为空时使用默认超时客户端
func New(base string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{base: strings.TrimRight(base, "/"), client: client}
}

func (c *Client) Locations(ctx context.Context, cat viewer.Category) (geo.FeatureCollection, error) {
	var fc geo.FeatureCollection
	err := c.getJSON(ctx, "locations", "/locations/"+string(cat), func(b []byte) error {
		var err error
		fc, err = geo.ParseCollection(b)
		return err
	})
	return fc, err
}

func (c *Client) Boundaries(ctx context.Context) (geo.FeatureCollection, error) {
	var fc geo.FeatureCollection
	err := c.getJSON(ctx, "boundaries", "/kingdoms", func(b []byte) error {
		var err error
		fc, err = geo.ParseCollection(b)
		return err
	})
	return fc, err
}

func (c *Client) RegionSize(ctx context.Context, id int64) (float64, error) {
	var r struct {
		Size float64 `json:"size"`
	}
	err := c.getJSON(ctx, "region_size", kingdomPath(id, "size"), decodeInto(&r))
	return r.Size, err
}

func (c *Client) CastleCount(ctx context.Context, id int64) (int, error) {
	var r struct {
		Count int `json:"count"`
	}
	err := c.getJSON(ctx, "castle_count", kingdomPath(id, "castles"), decodeInto(&r))
	return r.Count, err
}

func (c *Client) RegionDetails(ctx context.Context, id int64) (viewer.Details, error) {
	var r summary
	err := c.getJSON(ctx, "region_details", kingdomPath(id, "summary"), decodeInto(&r))
	return r.details(), err
}

func (c *Client) LocationDetails(ctx context.Context, id int64) (viewer.Details, error) {
	var r summary
	err := c.getJSON(ctx, "location_details", "/locations/"+strconv.FormatInt(id, 10)+"/summary", decodeInto(&r))
	return r.details(), err
}

type summary struct {
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

func (s summary) details() viewer.Details {
	return viewer.Details{SummaryText: s.Summary, URL: s.URL}
}

func kingdomPath(id int64, leaf string) string {
	return "/kingdoms/" + strconv.FormatInt(id, 10) + "/" + leaf
}

func decodeInto(v any) func([]byte) error {
	return func(b []byte) error { return json.Unmarshal(b, v) }
}

// 文档注释：执行 GET 并交给 decode 解析
// 约束：非 2xx 返回 *StatusError（响应体截断到 256 字节）；解码失败计入失败指标。
func (c *Client) getJSON(ctx context.Context, op, path string, decode func([]byte) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	t0 := time.Now()
	metrics.ClientRequestsTotal.WithLabelValues(op).Inc()
	logger.L().Debug("atlasapi_req", "op", op, "path", path)
	resp, err := c.client.Do(req)
	if err != nil {
		logger.L().Warn("atlasapi_http_error", "op", op, "err", err)
		metrics.ClientFailTotal.WithLabelValues(op).Inc()
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ClientFailTotal.WithLabelValues(op).Inc()
		return err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.ClientDurationMs.WithLabelValues(op).Observe(float64(dur))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ClientFailTotal.WithLabelValues(op).Inc()
		msg := strings.TrimSpace(string(body))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		logger.L().Warn("atlasapi_status", "op", op, "status", resp.StatusCode, "duration_ms", dur)
		return &StatusError{Op: op, Status: resp.StatusCode, Body: msg}
	}
	if err := decode(body); err != nil {
		logger.L().Error("atlasapi_decode_error", "op", op, "err", err)
		metrics.ClientFailTotal.WithLabelValues(op).Inc()
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	logger.L().Debug("atlasapi_resp", "op", op, "status", resp.StatusCode, "duration_ms", dur)
	return nil
}
