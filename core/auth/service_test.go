package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"KPlayer/cache"
	"KPlayer/model"
	"KPlayer/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUsers is an in-memory UserRepository.
type memoryUsers struct {
	mu      sync.Mutex
	byUID   map[string]*model.User
	nextUID int

	GetUserByEmailFunc func(ctx context.Context, email string) (*model.User, error)
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byUID: make(map[string]*model.User)}
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *model.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byUID {
		if u.Email == user.Email {
			return "", repository.ErrDuplicateUser
		}
	}
	m.nextUID++
	user.UID = fmt.Sprintf("uid-%d", m.nextUID)
	cp := *user
	m.byUID[user.UID] = &cp
	return user.UID, nil
}

func (m *memoryUsers) GetUserByUID(ctx context.Context, uid string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byUID[uid]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byUID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *memoryUsers, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := newMemoryUsers()
	return NewService(users, cache.NewSessionCache(client), "test-secret", time.Hour), users, mr
}

func TestSignUp_IssuesLiveToken(t *testing.T) {
	svc, _, mr := newTestService(t)
	ctx := context.Background()

	id, err := svc.SignUp(ctx, " Ada ", "Ada@Example.com ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Ada", id.DisplayName)
	assert.Equal(t, "ada@example.com", id.Email)
	require.NotEmpty(t, id.Token)

	claims, err := ParseToken([]byte("test-secret"), id.Token)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.GetSessionKey(claims.ID)))

	verified, err := svc.Verify(ctx, id.Token)
	require.NoError(t, err)
	assert.Equal(t, id.UID, verified.UID)
}

func TestSignUp_EmailTaken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "A", "a@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "B", "A@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "A", "a@example.com", "right")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@example.com", "right")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "", "")
	assert.ErrorIs(t, err, ErrMissingFields)

	id, err := svc.SignIn(ctx, "A@EXAMPLE.COM", "right")
	require.NoError(t, err)
	assert.NotEmpty(t, id.Token)
}

func TestSignIn_StoreErrorPropagates(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.GetUserByEmailFunc = func(ctx context.Context, email string) (*model.User, error) {
		return nil, errors.New("db down")
	}

	_, err := svc.SignIn(context.Background(), "a@example.com", "pw")
	assert.EqualError(t, err, "db down")
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	id, err := svc.SignUp(ctx, "A", "a@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, id.Token))

	_, err = svc.Verify(ctx, id.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NoError(t, svc.SignOut(ctx, "garbage"))
}

func TestVerify_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc, _, mr := newTestService(t)
	ctx := context.Background()
	id, err := svc.SignUp(ctx, "A", "a@example.com", "pw")
	require.NoError(t, err)

	forged, _, err := GenerateToken([]byte("other-secret"), id.UID, id.Email, time.Hour)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	mr.FastForward(2 * time.Hour)
	_, err = svc.Verify(ctx, id.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsSessionOwnedByAnotherUser(t *testing.T) {
	svc, _, mr := newTestService(t)
	ctx := context.Background()
	id, err := svc.SignUp(ctx, "A", "a@example.com", "pw")
	require.NoError(t, err)
	claims, err := ParseToken([]byte("test-secret"), id.Token)
	require.NoError(t, err)

	require.NoError(t, mr.Set(cache.GetSessionKey(claims.ID), "uid-999"))
	_, err = svc.Verify(ctx, id.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)
	assert.True(t, VerifyPassword("secret", hash))
	assert.False(t, VerifyPassword("Secret", hash))
}
