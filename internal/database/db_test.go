package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/login-service/internal/config"
)

func testDBConfig() config.DBConfig {
	return config.DBConfig{
		User:           "login_ro",
		Password:       "p@ss:word/1",
		Host:           "db.internal",
		Port:           "3306",
		Name:           "kossodo",
		Charset:        "utf8mb4",
		Collation:      "utf8mb4_unicode_ci",
		TLS:            "preferred",
		ConnectTimeout: 10 * time.Second,
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(testDBConfig())

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)

	assert.Equal(t, "login_ro", parsed.User)
	assert.Equal(t, "p@ss:word/1", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.internal:3306", parsed.Addr)
	assert.Equal(t, "kossodo", parsed.DBName)
	assert.Equal(t, "utf8mb4_unicode_ci", parsed.Collation)
	assert.Equal(t, 10*time.Second, parsed.Timeout)
	assert.Equal(t, "preferred", parsed.TLSConfig)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDSN_IPv6Host(t *testing.T) {
	cfg := testDBConfig()
	cfg.Host = "::1"

	parsed, err := mysql.ParseDSN(DSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "[::1]:3306", parsed.Addr)
}

func TestDSN_ZeroTimeoutStaysBounded(t *testing.T) {
	cfg := testDBConfig()
	cfg.ConnectTimeout = 0

	parsed, err := mysql.ParseDSN(DSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConnectTimeout, parsed.Timeout)
}

func TestOpen_UnreachableStoreStillReturnsPool(t *testing.T) {
	cfg := testDBConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = "1"
	cfg.TLS = "false"
	cfg.ConnectTimeout = 500 * time.Millisecond
	cfg.MaxOpenConns = 2

	db, err := Open(cfg)
	require.Error(t, err)
	require.NotNil(t, db)
	defer db.Close()

	assert.Contains(t, err.Error(), "ping mysql")
	assert.Equal(t, 2, db.Stats().MaxOpenConnections)
}
