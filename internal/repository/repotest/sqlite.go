// Package repotest provides a file-backed SQLite stand-in for the MySQL
// credential store.  The usuarios schema matches production closely enough
// for the lookup query to run unchanged.
package repotest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE usuarios (
	id            INTEGER PRIMARY KEY,
	usuario       TEXT NOT NULL UNIQUE,
	nombre        TEXT,
	cargo         TEXT,
	password_hash TEXT NOT NULL
)`

// Row is one usuarios record to seed.
type Row struct {
	ID           int64
	Username     string
	DisplayName  string
	Role         string
	PasswordHash string
}

// NewDB creates the schema in a temporary database, inserts rows and
// closes the pool when the test ends.
func NewDB(t testing.TB, rows ...Row) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "usuarios.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	for _, r := range rows {
		_, err = db.Exec(
			"INSERT INTO usuarios (id, usuario, nombre, cargo, password_hash) VALUES (?,?,?,?,?)",
			r.ID, r.Username, r.DisplayName, r.Role, r.PasswordHash)
		require.NoError(t, err)
	}
	return db
}
