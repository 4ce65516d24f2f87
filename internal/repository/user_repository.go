package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/pkg/errors"

	"github.com/iliyamo/login-service/internal/model"
)

const findByUsernameQuery = "SELECT id, usuario, nombre, cargo, password_hash FROM usuarios WHERE usuario = ? LIMIT 1"

// UserRepo reads credential records from the `usuarios` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// FindByUsername fetches the record whose usuario column equals username
// exactly.  The caller normalises the value first.  A dedicated connection
// is taken from the pool for the lookup and returned on every path.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (model.User, error) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return model.User{}, errors.Wrapf(ErrConnection, "acquire connection: %v", err)
	}
	defer conn.Close()

	var (
		u    model.User
		name sql.NullString
		role sql.NullString
	)
	err = conn.QueryRowContext(ctx, findByUsernameQuery, username).
		Scan(&u.ID, &u.Username, &name, &role, &u.PasswordHash)
	if stderrors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, errors.Wrapf(ErrStoreUnavailable, "query usuarios: %v", err)
	}
	if u.PasswordHash == "" {
		return model.User{}, errors.Wrapf(ErrStoreUnavailable, "usuarios.id=%d has no password hash", u.ID)
	}
	u.DisplayName = name.String
	u.Role = role.String
	return u, nil
}

// Ping checks that a connection to the store can be established.
func (r *UserRepo) Ping(ctx context.Context) error {
	if err := r.DB.PingContext(ctx); err != nil {
		return errors.Wrapf(ErrConnection, "ping: %v", err)
	}
	return nil
}
