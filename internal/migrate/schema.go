package migrate

import (
	"context"
	"database/sql"

	"atlas/internal/logger"
)

// Statements：建表语句，按顺序执行
var Statements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS locations (
        gid SERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        type TEXT NOT NULL,
        summary TEXT NOT NULL DEFAULT '',
        url TEXT NOT NULL DEFAULT '',
        geog geography(Point, 4326) NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_locations_type ON locations(lower(type))`,
	`CREATE INDEX IF NOT EXISTS idx_locations_geog ON locations USING GIST(geog)`,
	`CREATE TABLE IF NOT EXISTS kingdoms (
        gid SERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        claimedby TEXT NOT NULL DEFAULT '',
        summary TEXT NOT NULL DEFAULT '',
        url TEXT NOT NULL DEFAULT '',
        geog geography(Geometry, 4326) NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_kingdoms_geog ON kingdoms USING GIST(geog)`,
}

// 背景：首次运行自动启用 PostGIS 并创建地点/王国表与空间索引
// 约束：使用 IF NOT EXISTS，可重复执行；不做破坏性变更
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
