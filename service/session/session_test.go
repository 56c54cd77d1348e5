package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type gaugeRecorder struct {
	values []int
}

func (g *gaugeRecorder) SetActiveSessions(n int) { g.values = append(g.values, n) }

func newTestManager(t *testing.T) (*Manager, *time.Time) {
	auth, err := NewAuthenticator("hfd2025", "")
	require.NoError(t, err)

	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	m := NewManager(NewMemoryStore(), auth, time.Hour)
	m.clock = func() time.Time { return now }
	return m, &now
}

func TestAuthenticator(t *testing.T) {
	auth, err := NewAuthenticator("hfd2025", "")
	require.NoError(t, err)
	assert.True(t, auth.Verify("hfd2025"))
	assert.False(t, auth.Verify("HFD2025"))
	assert.False(t, auth.Verify(""))

	hash, err := bcrypt.GenerateFromPassword([]byte("other"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed, err := NewAuthenticator("ignored", string(hash))
	require.NoError(t, err)
	assert.True(t, hashed.Verify("other"))
	assert.False(t, hashed.Verify("ignored"))

	_, err = NewAuthenticator("", "not-a-hash")
	assert.Error(t, err)
	_, err = NewAuthenticator("", "")
	assert.Error(t, err)
}

func TestManager_LoginValidateLogout(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.Login(ctx, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s, err := m.Login(ctx, "hfd2025")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, AdminUser, s.User)

	got, err := m.Validate(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)

	require.NoError(t, m.Logout(ctx, s.Token))
	_, err = m.Validate(ctx, s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Validate(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Expiry(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t)

	s, err := m.Login(ctx, "hfd2025")
	require.NoError(t, err)

	*now = now.Add(59 * time.Minute)
	_, err = m.Validate(ctx, s.Token)
	assert.NoError(t, err)

	*now = now.Add(time.Minute)
	_, err = m.Validate(ctx, s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCleanupService_RunOnce(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t)

	_, err := m.Login(ctx, "hfd2025")
	require.NoError(t, err)
	*now = now.Add(30 * time.Minute)
	_, err = m.Login(ctx, "hfd2025")
	require.NoError(t, err)

	active, err := m.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	*now = now.Add(45 * time.Minute)
	gauge := &gaugeRecorder{}
	svc := NewCleanupService(m, gauge)
	svc.RunOnce(ctx)

	assert.Equal(t, []int{1}, gauge.values)
	store := m.store.(*MemoryStore)
	assert.Len(t, store.sessions, 1)
}

func TestCleanupService_StartStop(t *testing.T) {
	m, _ := newTestManager(t)
	svc := NewCleanupService(m, nil)

	assert.Error(t, svc.Start("not a schedule"))
	require.NoError(t, svc.Start("*/1 * * * * *"))
	assert.Error(t, svc.Start("*/1 * * * * *"), "重复启动报错")
	svc.Stop()
	svc.Stop()
}

func TestRedisStore_KeyFormat(t *testing.T) {
	store := NewRedisStore(nil, "raotm:session")
	assert.Equal(t, "raotm:session:abc", store.key("abc"))
}
