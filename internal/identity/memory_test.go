package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func provider() *MemoryProvider {
	return NewMemoryProvider(SessionConfig{
		JWTSecret: "test-secret",
		Issuer:    "commerceflow",
		Audience:  "storefront",
		TTL:       time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	p := provider()
	ctx := context.Background()

	u, err := p.Register(ctx, "ayesha@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ayesha@example.com", u.Email)

	sess, err := p.Login(ctx, "ayesha@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

	cur, err := p.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, u.ID, cur.ID)
	assert.Equal(t, u.Email, cur.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	p := provider()
	ctx := context.Background()

	_, err := p.Register(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	_, err = p.Register(ctx, "a@example.com", "pw2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	p := provider()
	ctx := context.Background()

	_, err := p.Register(ctx, "a@example.com", "right")
	require.NoError(t, err)
	_, err = p.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Login(ctx, "nobody@example.com", "right")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_RevokesToken(t *testing.T) {
	p := provider()
	ctx := context.Background()

	_, err := p.Register(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	sess, err := p.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, p.Logout(ctx, sess.Token))

	cur, err := p.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, cur)

	// logging out again is harmless
	assert.NoError(t, p.Logout(ctx, sess.Token))
}

func TestCurrentUser_GarbageToken(t *testing.T) {
	p := provider()
	for _, token := range []string{"", "nonsense", "a.b.c"} {
		cur, err := p.CurrentUser(context.Background(), token)
		require.NoError(t, err)
		assert.Nil(t, cur, "token=%q", token)
	}
}

func TestCurrentUser_WrongSecret(t *testing.T) {
	issuer := provider()
	_, err := issuer.Register(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	sess, err := issuer.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)

	verifier := NewMemoryProvider(SessionConfig{
		JWTSecret: "different-secret",
		Issuer:    "commerceflow",
		Audience:  "storefront",
		TTL:       time.Hour,
	})
	cur, err := verifier.CurrentUser(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestSendPasswordReset_NeverRevealsAccounts(t *testing.T) {
	p := provider()
	ctx := context.Background()

	_, err := p.Register(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	assert.NoError(t, p.SendPasswordReset(ctx, "a@example.com"))
	assert.NoError(t, p.SendPasswordReset(ctx, "ghost@example.com"))
}
