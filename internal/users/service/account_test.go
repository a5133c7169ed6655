package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/store/drivers/sqlite"
	"github.com/chirpnet/chirp/pkg/cryptox"
	"github.com/chirpnet/chirp/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Isolate the pepper so tests never touch a real one.
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// chanMailer records deliveries so tests can wait on the async send.
type chanMailer struct {
	verify chan string
	reset  chan string
}

func newChanMailer() *chanMailer {
	return &chanMailer{
		verify: make(chan string, 8),
		reset:  make(chan string, 8),
	}
}

func (m *chanMailer) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	m.verify <- token
	return nil
}

func (m *chanMailer) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	m.reset <- token
	return nil
}

func waitToken(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case tok := <-ch:
		return tok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail delivery")
		return ""
	}
}

func newTestService(t *testing.T) (*AccountService, *chanMailer) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec(jwtx.Config{
		Issuer:              "chirp-users-test",
		AccessSecret:        "access-secret",
		RefreshSecret:       "refresh-secret",
		EmailVerifySecret:   "email-verify-secret",
		PasswordResetSecret: "password-reset-secret",
	})
	require.NoError(t, err)

	mailer := newChanMailer()
	return &AccountService{Store: st, Codec: codec, Mailer: mailer}, mailer
}

func register(t *testing.T, s *AccountService, email string) (domain.User, domain.TokenPair) {
	t.Helper()

	user, pair, err := s.Register(context.Background(), RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: "Sup3r!secret",
	})
	require.NoError(t, err)
	return user, pair
}

func TestRegister(t *testing.T) {
	t.Parallel()

	s, mailer := newTestService(t)
	ctx := context.Background()

	user, pair := register(t, s, "alice@example.com")

	require.Equal(t, domain.VerifyUnverified, user.Verify)
	require.Equal(t, "user_", user.Username[:5])
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	t.Run("access token carries the user", func(t *testing.T) {
		claims, err := s.Codec.Verify(pair.AccessToken, jwtx.KindAccess)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, string(domain.VerifyUnverified), claims.Verify)
	})

	t.Run("verification mail goes out", func(t *testing.T) {
		tok := waitToken(t, mailer.verify)

		stored, err := s.Store.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.EmailVerifyToken)
		require.Equal(t, *stored.EmailVerifyToken, tok)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, _, err := s.Register(ctx, RegisterInput{
			Name:     "Other",
			Email:    "alice@example.com",
			Password: "Sup3r!secret",
		})
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()
	user, _ := register(t, s, "bob@example.com")

	t.Run("correct credentials", func(t *testing.T) {
		got, pair, err := s.Login(ctx, "bob@example.com", "Sup3r!secret")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := s.Login(ctx, "bob@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := s.Login(ctx, "nobody@example.com", "Sup3r!secret")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login does not revoke other sessions", func(t *testing.T) {
		_, first, err := s.Login(ctx, "bob@example.com", "Sup3r!secret")
		require.NoError(t, err)
		_, _, err = s.Login(ctx, "bob@example.com", "Sup3r!secret")
		require.NoError(t, err)

		_, err = s.CheckRefreshToken(ctx, first.RefreshToken)
		require.NoError(t, err)
	})
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()
	_, pair := register(t, s, "carol@example.com")

	claims, err := s.CheckRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, claims.Subject)

	require.NoError(t, s.Logout(ctx, pair.RefreshToken))

	_, err = s.CheckRefreshToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// Logging out twice is fine.
	require.NoError(t, s.Logout(ctx, pair.RefreshToken))
}

func TestCheckRefreshTokenRejectsForgery(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()
	user, _ := register(t, s, "dave@example.com")

	other, err := jwtx.NewCodec(jwtx.Config{
		Issuer:              "chirp-users-test",
		AccessSecret:        "a",
		RefreshSecret:       "b",
		EmailVerifySecret:   "c",
		PasswordResetSecret: "d",
	})
	require.NoError(t, err)

	forged, err := other.Issue(jwtx.Payload{UserID: user.ID}, jwtx.KindRefresh)
	require.NoError(t, err)

	_, err = s.CheckRefreshToken(ctx, forged)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()
	user, _ := register(t, s, "erin@example.com")

	got, pair, err := s.VerifyEmail(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, domain.VerifyVerified, got.Verify)

	t.Run("fresh pair reflects the new status", func(t *testing.T) {
		claims, err := s.Codec.Verify(pair.AccessToken, jwtx.KindAccess)
		require.NoError(t, err)
		require.Equal(t, string(domain.VerifyVerified), claims.Verify)
	})

	t.Run("stored token is cleared", func(t *testing.T) {
		stored, err := s.Store.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, domain.VerifyVerified, stored.Verify)
		require.Nil(t, stored.EmailVerifyToken)
	})

	t.Run("verifying twice short-circuits", func(t *testing.T) {
		_, _, err := s.VerifyEmail(ctx, user.ID)
		require.ErrorIs(t, err, ErrAlreadyVerified)
	})

	t.Run("resend after verification short-circuits", func(t *testing.T) {
		require.ErrorIs(t, s.ResendVerifyEmail(ctx, user.ID), ErrAlreadyVerified)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := s.VerifyEmail(ctx, "missing")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestResendVerifyEmailRotatesToken(t *testing.T) {
	t.Parallel()

	s, mailer := newTestService(t)
	ctx := context.Background()
	user, _ := register(t, s, "frank@example.com")
	first := waitToken(t, mailer.verify)

	require.NoError(t, s.ResendVerifyEmail(ctx, user.ID))
	second := waitToken(t, mailer.verify)
	require.NotEqual(t, first, second)

	stored, err := s.Store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EmailVerifyToken)
	require.Equal(t, second, *stored.EmailVerifyToken)
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	s, mailer := newTestService(t)
	ctx := context.Background()
	user, pair := register(t, s, "grace@example.com")

	t.Run("unknown email", func(t *testing.T) {
		require.ErrorIs(t, s.ForgotPassword(ctx, "nobody@example.com"), ErrUserNotFound)
	})

	require.NoError(t, s.ForgotPassword(ctx, "grace@example.com"))
	resetToken := waitToken(t, mailer.reset)

	t.Run("reset token checks out", func(t *testing.T) {
		got, err := s.CheckResetToken(ctx, resetToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("a newer token invalidates the old one", func(t *testing.T) {
		require.NoError(t, s.ForgotPassword(ctx, "grace@example.com"))
		newer := waitToken(t, mailer.reset)

		_, err := s.CheckResetToken(ctx, resetToken)
		require.ErrorIs(t, err, ErrInvalidResetToken)

		resetToken = newer
	})

	require.NoError(t, s.ResetPassword(ctx, user.ID, "N3w!password"))

	t.Run("new password works, old does not", func(t *testing.T) {
		_, _, err := s.Login(ctx, "grace@example.com", "N3w!password")
		require.NoError(t, err)

		_, _, err = s.Login(ctx, "grace@example.com", "Sup3r!secret")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("reset revokes every session", func(t *testing.T) {
		_, err := s.CheckRefreshToken(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("used reset token stops working", func(t *testing.T) {
		_, err := s.CheckResetToken(ctx, resetToken)
		require.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestUpdateMe(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()
	user, _ := register(t, s, "heidi@example.com")
	other, _ := register(t, s, "ivan@example.com")

	bio := "gopher"
	username := "heidi"
	got, err := s.UpdateMe(ctx, user.ID, domain.UserPatch{Bio: &bio, Username: &username})
	require.NoError(t, err)
	require.Equal(t, "heidi", got.Username)
	require.NotNil(t, got.Bio)

	t.Run("taken username", func(t *testing.T) {
		taken := "heidi"
		_, err := s.UpdateMe(ctx, other.ID, domain.UserPatch{Username: &taken})
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("profile visible under new username", func(t *testing.T) {
		profile, err := s.GetProfile(ctx, "heidi")
		require.NoError(t, err)
		require.Equal(t, user.ID, profile.ID)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := s.GetProfile(ctx, "nobody")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestFollowGraph(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	follows := &FollowService{Store: s.Store}
	ctx := context.Background()

	a, _ := register(t, s, "a@example.com")
	b, _ := register(t, s, "b@example.com")

	t.Run("self follow is rejected", func(t *testing.T) {
		_, err := follows.Follow(ctx, a.ID, a.ID)
		require.ErrorIs(t, err, ErrSelfFollow)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := follows.Follow(ctx, a.ID, "missing")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	already, err := follows.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.False(t, already)

	t.Run("following twice is idempotent", func(t *testing.T) {
		already, err := follows.Follow(ctx, a.ID, b.ID)
		require.NoError(t, err)
		require.True(t, already)
	})

	t.Run("counts show up on profiles", func(t *testing.T) {
		profile, err := s.GetMe(ctx, b.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, profile.Followers)

		profile, err = s.GetMe(ctx, a.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, profile.Following)
	})

	already, err = follows.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.False(t, already)

	t.Run("unfollowing twice is idempotent", func(t *testing.T) {
		already, err := follows.Unfollow(ctx, a.ID, b.ID)
		require.NoError(t, err)
		require.True(t, already)
	})
}

func TestHousekeepingPurgesExpiredSessions(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()
	user, pair := register(t, s, "judy@example.com")

	// Backdate the session so the sweep picks it up.
	hash := cryptox.FingerprintToken(pair.RefreshToken)
	require.NoError(t, s.Store.RefreshTokens().DeleteRefreshToken(ctx, hash))
	require.NoError(t, s.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        user.ID,
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(-time.Minute).UTC(),
	}))

	purged, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, err = s.CheckRefreshToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}
