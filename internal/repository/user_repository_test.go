package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/login-service/internal/repository"
	"github.com/iliyamo/login-service/internal/repository/repotest"
)

const aliceHash = "$2a$04$abcdefghijklmnopqrstuu3Uo2VbV5L0aE4kB6m9Z3dYJzH0a7Q6W"

func TestUserRepo_FindByUsername(t *testing.T) {
	db := repotest.NewDB(t, repotest.Row{
		ID: 7, Username: "alice", DisplayName: "Alice Pérez", Role: "Analista", PasswordHash: aliceHash,
	})
	repo := repository.NewUserRepo(db)

	u, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "Alice Pérez", u.DisplayName)
	assert.Equal(t, "Analista", u.Role)
	assert.Equal(t, aliceHash, u.PasswordHash)
}

func TestUserRepo_FindByUsername_NotFound(t *testing.T) {
	repo := repository.NewUserRepo(repotest.NewDB(t))

	_, err := repo.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NotErrorIs(t, err, repository.ErrStoreUnavailable)
}

func TestUserRepo_FindByUsername_IsExactAndParameterised(t *testing.T) {
	db := repotest.NewDB(t, repotest.Row{ID: 1, Username: "alice", PasswordHash: aliceHash})
	repo := repository.NewUserRepo(db)

	for _, probe := range []string{"' OR '1'='1", "alice' --", "alic%", "ALICE "} {
		_, err := repo.FindByUsername(context.Background(), probe)
		assert.ErrorIs(t, err, repository.ErrNotFound, probe)
	}
}

func TestUserRepo_FindByUsername_ClosedPoolIsConnectionError(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewUserRepo(db)
	require.NoError(t, db.Close())

	_, err := repo.FindByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, repository.ErrConnection)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepo_FindByUsername_QueryFailure(t *testing.T) {
	db := repotest.NewDB(t)
	_, err := db.Exec("DROP TABLE usuarios")
	require.NoError(t, err)
	repo := repository.NewUserRepo(db)

	_, err = repo.FindByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, repository.ErrConnection)
}

func TestUserRepo_FindByUsername_EmptyHashIsAStoreDefect(t *testing.T) {
	db := repotest.NewDB(t, repotest.Row{ID: 3, Username: "bob", PasswordHash: ""})
	repo := repository.NewUserRepo(db)

	_, err := repo.FindByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
}

func TestUserRepo_FindByUsername_ReleasesConnections(t *testing.T) {
	db := repotest.NewDB(t, repotest.Row{ID: 1, Username: "alice", PasswordHash: aliceHash})
	db.SetMaxOpenConns(1)
	repo := repository.NewUserRepo(db)

	// With a single-connection pool a leaked conn would block the next call.
	for i := 0; i < 10; i++ {
		_, _ = repo.FindByUsername(context.Background(), "alice")
		_, _ = repo.FindByUsername(context.Background(), "missing")
	}
	assert.Equal(t, 0, db.Stats().InUse)
}

func TestUserRepo_Ping(t *testing.T) {
	db := repotest.NewDB(t)
	repo := repository.NewUserRepo(db)
	assert.NoError(t, repo.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.ErrorIs(t, repo.Ping(context.Background()), repository.ErrStoreUnavailable)
}

func TestUserRepo_FindByUsername_CancelledContext(t *testing.T) {
	repo := repository.NewUserRepo(repotest.NewDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
}
