// 包 store: 提供与 PostgreSQL/PostGIS 的数据访问层，包含地点、王国边界的查询与导入
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"atlas/internal/geo"
	"atlas/internal/logger"

	_ "github.com/lib/pq"
)

// ErrNotFound: 按主键查询无结果
var ErrNotFound = errors.New("not found")

// Store: 数据库访问入口，持有连接池并提供查询/导入接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Summary: 详情摘要与外部链接
type Summary struct {
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// 文档注释：按类型查询地点
// 背景：类型大小写不敏感（castle 与 Castle 等价）；几何经 ST_AsGeoJSON 输出后直接承载为要素。
// 约束：结果按 gid 升序，顺序稳定；无结果返回空集合而非错误。
func (s *Store) Locations(ctx context.Context, typ string) (geo.FeatureCollection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT gid, name, type, ST_AsGeoJSON(geog) FROM locations WHERE lower(type) = lower($1) ORDER BY gid`, typ)
	if err != nil {
		return geo.FeatureCollection{}, err
	}
	defer rows.Close()
	var fs []geo.Feature
	for rows.Next() {
		var (
			id         int64
			name, kind string
			geom       string
		)
		if err := rows.Scan(&id, &name, &kind, &geom); err != nil {
			return geo.FeatureCollection{}, err
		}
		f, err := feature(geom, map[string]any{"id": id, "name": name, "type": kind})
		if err != nil {
			return geo.FeatureCollection{}, fmt.Errorf("location %d: %w", id, err)
		}
		fs = append(fs, f)
	}
	if err := rows.Err(); err != nil {
		return geo.FeatureCollection{}, err
	}
	logger.L().Debug("db_locations", "type", typ, "count", len(fs))
	return geo.NewCollection(fs), nil
}

// Kingdoms: 全部王国边界，按 gid 升序
func (s *Store) Kingdoms(ctx context.Context) (geo.FeatureCollection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT gid, name, claimedby, ST_AsGeoJSON(geog) FROM kingdoms ORDER BY gid`)
	if err != nil {
		return geo.FeatureCollection{}, err
	}
	defer rows.Close()
	var fs []geo.Feature
	for rows.Next() {
		var (
			id              int64
			name, claimedBy string
			geom            string
		)
		if err := rows.Scan(&id, &name, &claimedBy, &geom); err != nil {
			return geo.FeatureCollection{}, err
		}
		f, err := feature(geom, map[string]any{"id": id, "name": name, "claimedby": claimedBy})
		if err != nil {
			return geo.FeatureCollection{}, fmt.Errorf("kingdom %d: %w", id, err)
		}
		fs = append(fs, f)
	}
	if err := rows.Err(); err != nil {
		return geo.FeatureCollection{}, err
	}
	logger.L().Debug("db_kingdoms", "count", len(fs))
	return geo.NewCollection(fs), nil
}

func feature(geom string, props map[string]any) (geo.Feature, error) {
	var g geo.Geometry
	if err := json.Unmarshal([]byte(geom), &g); err != nil {
		return geo.Feature{}, err
	}
	return geo.Feature{Type: "Feature", Properties: props, Geometry: g}, nil
}

// KingdomSize: 面积（平方公里），geography 上的 ST_Area 以平方米计
func (s *Store) KingdomSize(ctx context.Context, id int64) (float64, error) {
	var size float64
	err := s.db.QueryRowContext(ctx, `SELECT ST_Area(geog) / 1000000 FROM kingdoms WHERE gid = $1`, id).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return size, err
}

// 文档注释：王国境内城堡数量
// 约束：王国不存在返回 ErrNotFound；存在但无城堡返回 0。
func (s *Store) CastleCount(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
        SELECT (
            SELECT count(*) FROM locations l
            WHERE lower(l.type) = 'castle' AND ST_Intersects(k.geog, l.geog)
        )
        FROM kingdoms k WHERE k.gid = $1`, id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return n, err
}

func (s *Store) KingdomSummary(ctx context.Context, id int64) (Summary, error) {
	return s.summary(ctx, `SELECT summary, url FROM kingdoms WHERE gid = $1`, id)
}

func (s *Store) LocationSummary(ctx context.Context, id int64) (Summary, error) {
	return s.summary(ctx, `SELECT summary, url FROM locations WHERE gid = $1`, id)
}

func (s *Store) summary(ctx context.Context, q string, id int64) (Summary, error) {
	var out Summary
	err := s.db.QueryRowContext(ctx, q, id).Scan(&out.Summary, &out.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrNotFound
	}
	return out, err
}

// Counts: 表内行数，用于导入后的自检日志
func (s *Store) Counts(ctx context.Context) (locations, kingdoms int64, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM locations`).Scan(&locations); err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM kingdoms`).Scan(&kingdoms)
	return locations, kingdoms, err
}

// 文档注释：整体替换地点与王国数据
// 背景：导入作业读取 GeoJSON 文件后一次性写入；单事务执行，失败时整体回滚。
// 约束：要素带 id 时沿用为 gid，并在写入后校正序列；几何按 SRID 4326 转为 geography。
func (s *Store) ReplaceAll(ctx context.Context, locations, kingdoms geo.FeatureCollection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `TRUNCATE locations, kingdoms RESTART IDENTITY`); err != nil {
		return err
	}
	for i, f := range locations.Features {
		if err := insertLocation(ctx, tx, f); err != nil {
			return fmt.Errorf("location %d (%s): %w", i, f.Name(), err)
		}
	}
	for i, f := range kingdoms.Features {
		if err := insertKingdom(ctx, tx, f); err != nil {
			return fmt.Errorf("kingdom %d (%s): %w", i, f.Name(), err)
		}
	}
	for _, t := range []string{"locations", "kingdoms"} {
		q := `SELECT setval(pg_get_serial_sequence('` + t + `', 'gid'), COALESCE(MAX(gid), 0) + 1, false) FROM ` + t
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("db_replace_done", "locations", len(locations.Features), "kingdoms", len(kingdoms.Features))
	return nil
}

func insertLocation(ctx context.Context, tx *sql.Tx, f geo.Feature) error {
	if !f.Geometry.IsPoint() {
		return fmt.Errorf("%w: %s", geo.ErrUnsupportedGeometry, f.Geometry.Type)
	}
	g, err := json.Marshal(f.Geometry)
	if err != nil {
		return err
	}
	cols := []string{"name", "type", "summary", "url", "geog"}
	args := []any{f.Name(), f.Kind(), prop(f, "summary"), prop(f, "url"), string(g)}
	return insertRow(ctx, tx, "locations", f.ID(), cols, args)
}

func insertKingdom(ctx context.Context, tx *sql.Tx, f geo.Feature) error {
	if !f.Geometry.IsAreal() {
		return fmt.Errorf("%w: %s", geo.ErrUnsupportedGeometry, f.Geometry.Type)
	}
	g, err := json.Marshal(f.Geometry)
	if err != nil {
		return err
	}
	cols := []string{"name", "claimedby", "summary", "url", "geog"}
	args := []any{f.Name(), prop(f, "claimedby"), prop(f, "summary"), prop(f, "url"), string(g)}
	return insertRow(ctx, tx, "kingdoms", f.ID(), cols, args)
}

func insertRow(ctx context.Context, tx *sql.Tx, table string, id int64, cols []string, args []any) error {
	if id > 0 {
		cols = append([]string{"gid"}, cols...)
		args = append([]any{id}, args...)
	}
	_, err := tx.ExecContext(ctx, insertSQL(table, cols), args...)
	return err
}

// insertSQL：最后一列固定为 GeoJSON 几何，写入时转换为 geography
func insertSQL(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	last := len(ph) - 1
	ph[last] = "ST_SetSRID(ST_GeomFromGeoJSON(" + ph[last] + "), 4326)::geography"
	return "INSERT INTO " + table + "(" + strings.Join(cols, ", ") + ") VALUES(" + strings.Join(ph, ", ") + ")"
}

func prop(f geo.Feature, k string) string {
	if v, ok := f.Properties[k].(string); ok {
		return v
	}
	return ""
}
