package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/iliyamo/login-service/internal/config"
)

// DSN builds the go-sql-driver connection string for the credential store.
func DSN(cfg config.DBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.Collation = cfg.Collation
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = connectTimeout(cfg)
	mc.TLSConfig = cfg.TLS
	if cfg.Charset != "" {
		mc.Params = map[string]string{"charset": cfg.Charset}
	}
	return mc.FormatDSN()
}

// Open creates the connection pool and verifies it with a ping bounded by
// the connect timeout.  The pool is returned even when the ping fails so the
// service can start and report the store as unavailable until it recovers.
func Open(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	// Pool settings
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout(cfg))
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return db, errors.Wrap(err, "ping mysql")
	}
	return db, nil
}

func connectTimeout(cfg config.DBConfig) time.Duration {
	if cfg.ConnectTimeout <= 0 {
		return config.DefaultConnectTimeout
	}
	return cfg.ConnectTimeout
}
