package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, name, username, email, password_hash, verify,
	email_verify_token, forgot_password_token, date_of_birth, bio, location,
	website, avatar, cover_photo, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u           domain.User
		verify      string
		verifyToken sql.NullString
		resetToken  sql.NullString
		dob         sql.NullTime
		bio         sql.NullString
		location    sql.NullString
		website     sql.NullString
		avatar      sql.NullString
		coverPhoto  sql.NullString
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &verify,
		&verifyToken, &resetToken, &dob, &bio, &location,
		&website, &avatar, &coverPhoto, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Verify = domain.VerifyStatus(verify)
	u.EmailVerifyToken = mapNullStringPtr(verifyToken)
	u.ForgotPasswordToken = mapNullStringPtr(resetToken)
	u.DateOfBirth = mapNullTimePtr(dob)
	u.Bio = mapNullStringPtr(bio)
	u.Location = mapNullStringPtr(location)
	u.Website = mapNullStringPtr(website)
	u.Avatar = mapNullStringPtr(avatar)
	u.CoverPhoto = mapNullStringPtr(coverPhoto)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, username, email, password_hash, verify,
			email_verify_token, forgot_password_token, date_of_birth, bio,
			location, website, avatar, cover_photo, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Username, u.Email, u.PasswordHash, string(u.Verify),
		mapOptionalString(u.EmailVerifyToken), mapOptionalString(u.ForgotPasswordToken),
		mapOptionalTime(u.DateOfBirth), mapOptionalString(u.Bio),
		mapOptionalString(u.Location), mapOptionalString(u.Website),
		mapOptionalString(u.Avatar), mapOptionalString(u.CoverPhoto),
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, p domain.UserPatch) error {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.DateOfBirth != nil {
		set("date_of_birth", *p.DateOfBirth)
	}
	if p.Bio != nil {
		set("bio", *p.Bio)
	}
	if p.Location != nil {
		set("location", *p.Location)
	}
	if p.Website != nil {
		set("website", *p.Website)
	}
	if p.Username != nil {
		set("username", *p.Username)
	}
	if p.Avatar != nil {
		set("avatar", *p.Avatar)
	}
	if p.CoverPhoto != nil {
		set("cover_photo", *p.CoverPhoto)
	}
	if len(sets) == 0 {
		return nil
	}

	set("updated_at", time.Now().UTC())
	args = append(args, userID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *usersRepo) SetEmailVerifyToken(ctx context.Context, userID, token string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verify_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET verify = ?, email_verify_token = NULL, updated_at = ? WHERE id = ?`,
		string(domain.VerifyVerified), time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetForgotPasswordToken(ctx context.Context, userID, token string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET forgot_password_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, forgot_password_token = NULL, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps a zero-row UPDATE/DELETE to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
