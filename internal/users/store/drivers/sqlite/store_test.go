package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/store"
	"github.com/chirpnet/chirp/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, email, username string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Verify:       domain.VerifyUnverified,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersRepoCRUD(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice@example.com", "alice")

	t.Run("get by id, email, username", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, got.Email)
		require.Equal(t, domain.VerifyUnverified, got.Verify)

		got, err = s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)

		got, err = s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("absent user is ErrNotFound", func(t *testing.T) {
		_, err := s.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email is ErrAlreadyExists", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		dup.Username = "alice2"
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("duplicate username is ErrAlreadyExists", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		dup.Email = "alice2@example.com"
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})
}

func TestUsersRepoVerifyFlow(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "bob@example.com", "bob")

	require.NoError(t, s.Users().SetEmailVerifyToken(ctx, u.ID, "verify-token"))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EmailVerifyToken)
	require.Equal(t, "verify-token", *got.EmailVerifyToken)

	require.NoError(t, s.Users().MarkEmailVerified(ctx, u.ID))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, domain.VerifyVerified, got.Verify)
	require.Nil(t, got.EmailVerifyToken)
}

func TestUsersRepoPasswordReset(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "carol@example.com", "carol")

	require.NoError(t, s.Users().SetForgotPasswordToken(ctx, u.ID, "reset-token"))
	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash"))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Nil(t, got.ForgotPasswordToken, "reset token must be cleared with the password change")
}

func TestUsersRepoUpdateProfile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "dave@example.com", "dave")
	seedUser(t, s, "erin@example.com", "erin")

	bio := "gopher"
	name := "Dave"
	require.NoError(t, s.Users().UpdateProfile(ctx, u.ID, domain.UserPatch{
		Name: &name,
		Bio:  &bio,
	}))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Dave", got.Name)
	require.NotNil(t, got.Bio)
	require.Equal(t, "gopher", *got.Bio)

	t.Run("empty patch is a no-op", func(t *testing.T) {
		require.NoError(t, s.Users().UpdateProfile(ctx, u.ID, domain.UserPatch{}))
	})

	t.Run("username collision is ErrAlreadyExists", func(t *testing.T) {
		taken := "erin"
		err := s.Users().UpdateProfile(ctx, u.ID, domain.UserPatch{Username: &taken})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown user is ErrNotFound", func(t *testing.T) {
		err := s.Users().UpdateProfile(ctx, "missing", domain.UserPatch{Name: &name})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRefreshTokensRepo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "frank@example.com", "frank")

	tok := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "fingerprint-1",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, tok))

	got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, "fingerprint-1"))
		require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, "fingerprint-1"))

		_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "fingerprint-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete all for user", func(t *testing.T) {
		for i, hash := range []string{"fp-a", "fp-b"} {
			require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
				ID:        idx.New().String(),
				UserID:    u.ID,
				TokenHash: hash,
				ExpiresAt: time.Now().Add(time.Duration(i+1) * time.Hour).UTC(),
			}))
		}

		require.NoError(t, s.RefreshTokens().DeleteAllUserRefreshTokens(ctx, u.ID))

		_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "fp-a")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("purges only expired rows", func(t *testing.T) {
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: "fp-live",
			ExpiresAt: time.Now().Add(time.Hour).UTC(),
		}))
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: "fp-dead",
			ExpiresAt: time.Now().Add(-time.Hour).UTC(),
		}))

		purged, err := s.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, purged)

		_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "fp-live")
		require.NoError(t, err)
	})
}

func TestFollowsRepo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "a@example.com", "usera")
	b := seedUser(t, s, "b@example.com", "userb")
	c := seedUser(t, s, "c@example.com", "userc")

	require.NoError(t, s.Follows().CreateFollow(ctx, domain.Follow{FollowerID: a.ID, FolloweeID: b.ID}))
	require.NoError(t, s.Follows().CreateFollow(ctx, domain.Follow{FollowerID: c.ID, FolloweeID: b.ID}))

	t.Run("duplicate edge is ErrAlreadyExists", func(t *testing.T) {
		err := s.Follows().CreateFollow(ctx, domain.Follow{FollowerID: a.ID, FolloweeID: b.ID})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("counts both directions", func(t *testing.T) {
		followers, err := s.Follows().CountFollowers(ctx, b.ID)
		require.NoError(t, err)
		require.EqualValues(t, 2, followers)

		following, err := s.Follows().CountFollowing(ctx, a.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, following)
	})

	t.Run("delete absent edge is ErrNotFound", func(t *testing.T) {
		require.NoError(t, s.Follows().DeleteFollow(ctx, a.ID, b.ID))
		require.ErrorIs(t, s.Follows().DeleteFollow(ctx, a.ID, b.ID), store.ErrNotFound)
	})

	t.Run("deleting a user cascades to edges", func(t *testing.T) {
		require.NoError(t, s.Users().DeleteUser(ctx, c.ID))

		followers, err := s.Follows().CountFollowers(ctx, b.ID)
		require.NoError(t, err)
		require.EqualValues(t, 0, followers)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "tx@example.com", "txuser")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetForgotPasswordToken(ctx, u.ID, "tok"); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.ForgotPasswordToken)
}
