package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/session-auth/internal/model"
)

// UserStore is the subset of UserRepo the cache decorates.
type UserStore interface {
	Create(ctx context.Context, name, email, password string) (model.User, error)
	GetByEmail(ctx context.Context, email string, withHash bool) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// CachedUserRepo serves GetByID from Redis and falls back to the inner store
// on a miss or on any Redis failure. GetByIDFresh skips the cached read for
// callers that must observe out-of-band changes. Cached entries never carry a password
// hash. A nil client turns the decorator into a pass-through.
type CachedUserRepo struct {
	Inner  UserStore
	RDB    *redis.Client
	TTL    time.Duration
	Prefix string
	Log    *slog.Logger
}

func NewCachedUserRepo(inner UserStore, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedUserRepo {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedUserRepo{Inner: inner, RDB: rdb, TTL: ttl, Prefix: "user:", Log: log}
}

// cachedUser is the JSON shape stored in Redis.
type cachedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *CachedUserRepo) Create(ctx context.Context, name, email, password string) (model.User, error) {
	return r.Inner.Create(ctx, name, email, password)
}

func (r *CachedUserRepo) GetByEmail(ctx context.Context, email string, withHash bool) (model.User, error) {
	return r.Inner.GetByEmail(ctx, email, withHash)
}

func (r *CachedUserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	if r.RDB == nil {
		return r.Inner.GetByID(ctx, id)
	}
	key := r.Prefix + id

	bs, err := r.RDB.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if jerr := json.Unmarshal(bs, &cu); jerr == nil {
			return model.User{
				ID: cu.ID, Name: cu.Name, Email: cu.Email, IsAdmin: cu.IsAdmin,
				CreatedAt: cu.CreatedAt, UpdatedAt: cu.UpdatedAt,
			}, nil
		}
		r.Log.WarnContext(ctx, "user cache: dropping undecodable entry", "key", key)
		_ = r.RDB.Del(ctx, key).Err()
	case errors.Is(err, redis.Nil):
	default:
		r.Log.WarnContext(ctx, "user cache: get failed", "error", err)
	}

	u, err := r.Inner.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	r.put(ctx, u)
	return u, nil
}

// GetByIDFresh reads the primary store and brings the cache in line with
// it: the entry is rewritten when the user exists and dropped when it is
// gone.
func (r *CachedUserRepo) GetByIDFresh(ctx context.Context, id string) (model.User, error) {
	u, err := r.Inner.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		if ierr := r.Invalidate(ctx, id); ierr != nil {
			r.Log.WarnContext(ctx, "user cache: invalidate failed", "error", ierr)
		}
	}
	if err != nil {
		return model.User{}, err
	}
	r.put(ctx, u)
	return u, nil
}

func (r *CachedUserRepo) put(ctx context.Context, u model.User) {
	if r.RDB == nil {
		return
	}
	payload, err := json.Marshal(cachedUser{
		ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := r.RDB.Set(ctx, r.Prefix+u.ID, payload, r.TTL).Err(); err != nil {
		r.Log.WarnContext(ctx, "user cache: set failed", "error", err)
	}
}

// Invalidate drops the cached record for id.
func (r *CachedUserRepo) Invalidate(ctx context.Context, id string) error {
	if r.RDB == nil {
		return nil
	}
	return r.RDB.Del(ctx, r.Prefix+id).Err()
}
