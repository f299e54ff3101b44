package application

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ecommerce-auth/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-auth/internal/infrastructure/memory"
	"github.com/oksasatya/go-ecommerce-auth/pkg/helpers"
)

type fakeIndexer struct {
	indexed []string
	hits    []map[string]any
	size    int
}

func (f *fakeIndexer) IndexUser(_ context.Context, u *entity.User) error {
	f.indexed = append(f.indexed, u.ID)
	return nil
}

func (f *fakeIndexer) SearchUsers(_ context.Context, _ string, size int) ([]map[string]any, error) {
	f.size = size
	return f.hits, nil
}

func newSessionService(t *testing.T) (*Service, *miniredis.Miniredis, *memory.UserRepository, *fakeIndexer) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := memory.NewUserRepository()
	idx := &fakeIndexer{}
	jwt := helpers.NewJWTManager("access", "refresh", 5*time.Minute, time.Hour)
	return NewService(repo, jwt, rdb, nil, idx), mr, repo, idx
}

func seedUser(t *testing.T, repo *memory.UserRepository, email, password string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	u := &entity.User{Email: email, Password: hash, FirstName: "Uma", LastName: "Thurman", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestIssueTokens_RecordsSession(t *testing.T) {
	svc, mr, repo, _ := newSessionService(t)
	u := seedUser(t, repo, "uma@example.com", "secret1")

	pair, err := svc.IssueTokens(context.Background(), u)
	require.NoError(t, err)

	key := helpers.SessionKey(u.ID)
	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, mr.HGet(key, "sid"))
	assert.Equal(t, "Uma Thurman", mr.HGet(key, "name"))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, _, repo, _ := newSessionService(t)
	u := seedUser(t, repo, "vic@example.com", "secret1")
	ctx := context.Background()

	first, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)

	second, uid, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, _, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "old refresh token reused")

	_, _, err = svc.Refresh(ctx, first.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "access token as refresh")
}

func TestLogout_DropsSession(t *testing.T) {
	svc, mr, repo, _ := newSessionService(t)
	u := seedUser(t, repo, "wes@example.com", "secret1")
	ctx := context.Background()

	pair, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)
	require.True(t, mr.Exists(helpers.SessionKey(u.ID)))

	require.NoError(t, svc.Logout(ctx, u.ID))
	assert.False(t, mr.Exists(helpers.SessionKey(u.ID)))

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, mr, repo, idx := newSessionService(t)
	u := seedUser(t, repo, "xena@example.com", "secret1")
	ctx := context.Background()
	_, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)

	first := "Xena"
	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{FirstName: &first})
	require.NoError(t, err)

	assert.Equal(t, "Xena", updated.FirstName)
	assert.Equal(t, "Thurman", updated.LastName)
	assert.Equal(t, "Xena Thurman", mr.HGet(helpers.SessionKey(u.ID), "name"))
	assert.Equal(t, []string{u.ID}, idx.indexed)

	long := string(make([]byte, 151))
	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{LastName: &long})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateProfile(ctx, "missing", UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchUsers(t *testing.T) {
	svc, _, _, idx := newSessionService(t)
	idx.hits = []map[string]any{{"email": "a@example.com"}}

	hits, err := svc.SearchUsers(context.Background(), "a", 500)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, 10, idx.size)

	svc.Indexer = nil
	hits, err = svc.SearchUsers(context.Background(), "a", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
