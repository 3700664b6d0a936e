// 数据导入工具：读取 DATA_DIR 下的 locations/kingdoms GeoJSON 并整体替换数据库内容
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"atlas/internal/geo"
	"atlas/internal/logger"
	"atlas/internal/migrate"
	"atlas/internal/store"
	"atlas/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = filepath.Join("data", "geojson")
	}
	l.Info("ingest_begin", "dir", dir)

	sets, err := geo.LoadDir(dir)
	if err != nil {
		l.Error("geojson_load_error", "err", err)
		os.Exit(1)
	}
	locs, ok1 := sets["locations"]
	kingdoms, ok2 := sets["kingdoms"]
	if !ok1 || !ok2 {
		l.Error("geojson_missing", "dir", dir, "need", "locations.geojson,kingdoms.geojson")
		os.Exit(1)
	}

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	st := store.AttachDB(db)
	t0 := time.Now()
	if err := st.ReplaceAll(ctx, locs, kingdoms); err != nil {
		l.Error("ingest_error", "err", err)
		os.Exit(1)
	}
	nl, nk, err := st.Counts(ctx)
	if err != nil {
		l.Error("db_count_error", "err", err)
		os.Exit(1)
	}
	l.Info("ingest_done", "locations", nl, "kingdoms", nk, "duration_ms", time.Since(t0).Milliseconds())
}
