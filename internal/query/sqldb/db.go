package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DriverPostgres = "pgx"
	DriverDuckDB   = "duckdb"
)

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	// ReadOnly opens DuckDB files in read-only access mode. PostgreSQL
	// read-only enforcement happens per query in Engine.
	ReadOnly bool
}

func Open(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}
	dsn := strings.TrimSpace(cfg.DSN)
	switch driver {
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("database dsn is required")
		}
		dsn = stripPrismaParams(dsn)
	case DriverDuckDB:
		if cfg.ReadOnly {
			dsn = withDuckDBReadOnly(dsn)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	return db, nil
}

// stripPrismaParams drops the schema= query parameter that Prisma-style
// DATABASE_URL values carry; PostgreSQL rejects it as a runtime parameter.
func stripPrismaParams(dsn string) string {
	idx := strings.Index(dsn, "?")
	if idx < 0 {
		return dsn
	}
	base, rawQuery := dsn[:idx], dsn[idx+1:]
	kept := make([]string, 0)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" || strings.HasPrefix(pair, "schema=") {
			continue
		}
		kept = append(kept, pair)
	}
	if len(kept) == 0 {
		return base
	}
	return base + "?" + strings.Join(kept, "&")
}

func withDuckDBReadOnly(dsn string) string {
	if dsn == "" || strings.Contains(dsn, "access_mode=") {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + "access_mode=read_only"
}
