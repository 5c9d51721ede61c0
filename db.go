package guaguale

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var (
	dbOnce sync.Once
	dbConn *sql.DB
	dbErr  error
)

// statementTimeout bounds a single game_state or prize_config read or write.
const statementTimeout = 5 * time.Second

// GetDB returns the shared Postgres handle behind the kv_store table, built
// from DATABASE_URL. It returns (nil, nil) when DATABASE_URL is unset so the
// server can fall back to the file-backed store.
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return
		}
		config, err := connConfig(dsn)
		if err != nil {
			dbErr = err
			return
		}
		dbConn = stdlib.OpenDB(*config)
		// Sessions touch the store once per request, so a small pool suffices.
		dbConn.SetConnMaxIdleTime(4 * time.Minute)
		dbConn.SetMaxOpenConns(10)
		dbConn.SetMaxIdleConns(2)
		dbErr = dbConn.Ping()
	})
	if dbErr != nil {
		return nil, dbErr
	}
	return dbConn, nil
}

func connConfig(dsn string) (*pgx.ConnConfig, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	// Simple protocol keeps us compatible with PgBouncer in transaction mode.
	config.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	if _, ok := config.RuntimeParams["application_name"]; !ok {
		config.RuntimeParams["application_name"] = "guaguale"
	}
	// A hung statement must surface as a storage error, not stall a session lock.
	config.RuntimeParams["statement_timeout"] = fmt.Sprint(statementTimeout.Milliseconds())
	return config, nil
}
