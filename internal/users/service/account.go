package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/mail"
	"github.com/chirpnet/chirp/internal/users/store"
	"github.com/chirpnet/chirp/pkg/cryptox"
	"github.com/chirpnet/chirp/pkg/idx"
	"github.com/chirpnet/chirp/pkg/jwtx"
	"github.com/chirpnet/chirp/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrAlreadyVerified    = errors.New("already_verified")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidResetToken  = errors.New("invalid_reset_token")
)

// AccountService implements the account lifecycle: registration, login,
// session management, email verification, password reset, and profiles.
type AccountService struct {
	Store  store.Store
	Codec  *jwtx.Codec
	Mailer mail.Mailer
}

// RegisterInput carries the fields accepted at sign-up. Everything else on
// the profile is set later through UpdateMe.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth *time.Time
}

// Register creates an unverified account, persists a session, and kicks off
// the verification email. The username is derived from the user ID so the
// profile route works before the user picks one.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.User, domain.TokenPair, error) {
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	id := idx.New().String()
	user := domain.User{
		ID:           id,
		Name:         in.Name,
		Username:     "user_" + strings.ToLower(id),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Verify:       domain.VerifyUnverified,
		DateOfBirth:  in.DateOfBirth,
	}

	verifyToken, err := s.Codec.Issue(payloadOf(user), jwtx.KindEmailVerify)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	user.EmailVerifyToken = &verifyToken

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		pair, err = s.issuePair(ctx, tx, user)
		return err
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	s.sendMail(ctx, func(ctx context.Context) error {
		return s.Mailer.SendVerificationEmail(ctx, user.Email, verifyToken)
	})

	return user, pair, nil
}

// Login authenticates by email and password. Both a wrong email and a wrong
// password surface as the same error so the response never reveals which
// part was wrong.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, s.Store, user)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Logout revokes the presented refresh token. Revoking an already-gone
// session succeeds.
func (s *AccountService) Logout(ctx context.Context, refreshToken string) error {
	return s.Store.RefreshTokens().DeleteRefreshToken(ctx, cryptox.FingerprintToken(refreshToken))
}

// CheckRefreshToken validates a presented refresh token: signature and
// expiry via the codec, revocation via the stored fingerprint. The two
// checks are independent so they run concurrently.
func (s *AccountService) CheckRefreshToken(ctx context.Context, refreshToken string) (jwtx.Claims, error) {
	type decodeResult struct {
		claims jwtx.Claims
		err    error
	}
	decoded := make(chan decodeResult, 1)
	go func() {
		claims, err := s.Codec.Verify(refreshToken, jwtx.KindRefresh)
		decoded <- decodeResult{claims: claims, err: err}
	}()

	_, lookupErr := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(refreshToken))
	dec := <-decoded

	if dec.err != nil {
		return jwtx.Claims{}, dec.err
	}
	if lookupErr != nil {
		if errors.Is(lookupErr, store.ErrNotFound) {
			return jwtx.Claims{}, ErrInvalidRefresh
		}
		return jwtx.Claims{}, lookupErr
	}
	return dec.claims, nil
}

// VerifyEmail transitions an unverified user to verified and issues a fresh
// token pair reflecting the new status.
func (s *AccountService) VerifyEmail(ctx context.Context, userID string) (domain.User, domain.TokenPair, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	if user.Verify == domain.VerifyVerified {
		return domain.User{}, domain.TokenPair{}, ErrAlreadyVerified
	}

	user.Verify = domain.VerifyVerified
	user.EmailVerifyToken = nil

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().MarkEmailVerified(ctx, user.ID); err != nil {
			return err
		}
		pair, err = s.issuePair(ctx, tx, user)
		return err
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// ResendVerifyEmail overwrites the stored verification token with a fresh
// one and resends the mail.
func (s *AccountService) ResendVerifyEmail(ctx context.Context, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Verify == domain.VerifyVerified {
		return ErrAlreadyVerified
	}

	verifyToken, err := s.Codec.Issue(payloadOf(user), jwtx.KindEmailVerify)
	if err != nil {
		return err
	}
	if err := s.Store.Users().SetEmailVerifyToken(ctx, user.ID, verifyToken); err != nil {
		return err
	}

	s.sendMail(ctx, func(ctx context.Context) error {
		return s.Mailer.SendVerificationEmail(ctx, user.Email, verifyToken)
	})
	return nil
}

// ForgotPassword issues a reset token, stores it on the user row, and mails
// the reset link.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	resetToken, err := s.Codec.Issue(payloadOf(user), jwtx.KindPasswordReset)
	if err != nil {
		return err
	}
	if err := s.Store.Users().SetForgotPasswordToken(ctx, user.ID, resetToken); err != nil {
		return err
	}

	s.sendMail(ctx, func(ctx context.Context) error {
		return s.Mailer.SendPasswordResetEmail(ctx, user.Email, resetToken)
	})
	return nil
}

// CheckResetToken validates a presented reset token against both the codec
// and the value stored on the user row, so a token stops working the moment
// a newer one is issued or the password changes.
func (s *AccountService) CheckResetToken(ctx context.Context, resetToken string) (domain.User, error) {
	claims, err := s.Codec.Verify(resetToken, jwtx.KindPasswordReset)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.getUser(ctx, claims.Subject)
	if err != nil {
		return domain.User{}, err
	}
	if user.ForgotPasswordToken == nil || *user.ForgotPasswordToken != resetToken {
		return domain.User{}, ErrInvalidResetToken
	}
	return user, nil
}

// ResetPassword sets the new password and revokes every active session for
// the user. The stored reset token is cleared with the password change.
func (s *AccountService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return tx.RefreshTokens().DeleteAllUserRefreshTokens(ctx, userID)
	})
}

// UpdateMe applies the profile patch for the authenticated user and returns
// the updated record.
func (s *AccountService) UpdateMe(ctx context.Context, userID string, patch domain.UserPatch) (domain.User, error) {
	if err := s.Store.Users().UpdateProfile(ctx, userID, patch); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrUsernameTaken
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.getUser(ctx, userID)
}

// GetMe returns the authenticated user's own profile.
func (s *AccountService) GetMe(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.profileOf(ctx, user)
}

// GetProfile returns the public profile for a username.
func (s *AccountService) GetProfile(ctx context.Context, username string) (domain.Profile, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrUserNotFound
		}
		return domain.Profile{}, err
	}
	return s.profileOf(ctx, user)
}

func (s *AccountService) profileOf(ctx context.Context, user domain.User) (domain.Profile, error) {
	followers, err := s.Store.Follows().CountFollowers(ctx, user.ID)
	if err != nil {
		return domain.Profile{}, err
	}
	following, err := s.Store.Follows().CountFollowing(ctx, user.ID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.ProfileOf(user, followers, following), nil
}

func (s *AccountService) getUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// issuePair signs an access/refresh pair for the user and persists the
// refresh fingerprint. st may be the root store or an open transaction.
func (s *AccountService) issuePair(ctx context.Context, st store.Store, user domain.User) (domain.TokenPair, error) {
	access, err := s.Codec.Issue(payloadOf(user), jwtx.KindAccess)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Codec.Issue(payloadOf(user), jwtx.KindRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: time.Now().UTC().Add(s.Codec.TTL(jwtx.KindRefresh)),
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// sendMail delivers in the background so a slow SMTP server never blocks
// the response. The context is detached from the request's cancellation but
// keeps its logger.
func (s *AccountService) sendMail(ctx context.Context, send func(ctx context.Context) error) {
	mailCtx := context.WithoutCancel(ctx)
	go func() {
		if err := send(mailCtx); err != nil {
			slogx.FromContext(mailCtx).Error("mail delivery failed", "err", err)
		}
	}()
}

func payloadOf(u domain.User) jwtx.Payload {
	return jwtx.Payload{UserID: u.ID, Verify: string(u.Verify)}
}
