package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iliyamo/session-auth/internal/model"
	"github.com/iliyamo/session-auth/internal/utils"
)

// UserRepo is the credential store backed by the `users` table.
type UserRepo struct {
	DB   *sql.DB
	Cost int // bcrypt cost applied when a password is persisted
}

func NewUserRepo(db *sql.DB, cost int) *UserRepo {
	if cost == 0 {
		cost = utils.DefaultBcryptCost
	}
	return &UserRepo{DB: db, Cost: cost}
}

const publicColumns = "id,name,email,is_admin,created_at,updated_at"

// Create hashes password, inserts the user and returns the stored record
// without its hash. The unique index on email is what rejects a second
// writer racing on the same address; that case maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password string) (model.User, error) {
	hash, err := utils.HashPassword(password, r.Cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	u := model.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		IsAdmin:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, hash, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by email. The password hash is only selected
// when withHash is set.
func (r *UserRepo) GetByEmail(ctx context.Context, email string, withHash bool) (model.User, error) {
	cols := publicColumns
	if withHash {
		cols += ",password_hash"
	}
	row := r.DB.QueryRowContext(ctx, "SELECT "+cols+" FROM users WHERE email=? LIMIT 1", strings.TrimSpace(email))
	return scanUser(row, withHash)
}

// GetByID fetches a user by id, never including the hash.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+publicColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row, false)
}

// Ping checks that the store is reachable.
func (r *UserRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func scanUser(row *sql.Row, withHash bool) (model.User, error) {
	var u model.User
	dest := []any{&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt}
	if withHash {
		dest = append(dest, &u.PasswordHash)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// isDuplicateKey recognises unique-constraint violations from both drivers.
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 // ER_DUP_ENTRY
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}
