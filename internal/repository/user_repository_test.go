package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/session-auth/internal/testutil"
	"github.com/iliyamo/session-auth/internal/utils"
)

func newTestRepo(t *testing.T) *UserRepo {
	t.Helper()
	return NewUserRepo(testutil.TestDB(t), bcrypt.MinCost)
}

func TestUserRepo_CreateHashesPassword(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.Create(ctx, "Ann Lee", "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.PasswordHash, "Create must not return the hash")
	assert.False(t, u.IsAdmin)

	withHash, err := repo.GetByEmail(ctx, "ann@example.com", true)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", withHash.PasswordHash)
	assert.True(t, utils.VerifyPassword(withHash.PasswordHash, "secret1"))
}

func TestUserRepo_GetByEmailOmitsHashByDefault(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Ann Lee", "ann@example.com", "secret1")
	require.NoError(t, err)

	u, err := repo.GetByEmail(ctx, "ann@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.Equal(t, "Ann Lee", u.Name)
	assert.Empty(t, u.PasswordHash)
}

func TestUserRepo_GetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Ann Lee", "ann@example.com", "secret1")
	require.NoError(t, err)

	u, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, u.Email)
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, created.CreatedAt.Unix(), u.CreatedAt.Unix())
}

func TestUserRepo_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "Ann Lee", "ann@example.com", "secret1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "Ann Again", "ann@example.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = repo.Create(ctx, "Ann Upper", "ANN@example.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailExists, "email uniqueness is case-insensitive")
}

func TestUserRepo_ConcurrentCreateSameEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const writers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		conflict int
		other    []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, fmt.Sprintf("Writer %d", i), "race@example.com", "secret1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrEmailExists):
				conflict++
			default:
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, conflict)
}

func TestUserRepo_CreateCancelledContext(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, "Ann Lee", "ann@example.com", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsDuplicateKey_MySQL(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, isDuplicateKey(fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1045}))
	assert.False(t, isDuplicateKey(errors.New("1062 lookalike")))
}
