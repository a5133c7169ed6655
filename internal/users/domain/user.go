package domain

import "time"

// VerifyStatus is the user's email verification state. It is embedded in
// issued tokens so handlers can gate on it without a database round trip.
type VerifyStatus string

const (
	VerifyUnverified VerifyStatus = "unverified"
	VerifyVerified   VerifyStatus = "verified"
	VerifyBanned     VerifyStatus = "banned"
)

type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string // argon2id encoded
	Verify       VerifyStatus

	// Single-use flow tokens stored on the row so presentation can be
	// checked against the latest issued value.
	EmailVerifyToken    *string
	ForgotPasswordToken *string

	DateOfBirth *time.Time
	Bio         *string
	Location    *string
	Website     *string
	Avatar      *string
	CoverPhoto  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserPatch carries the profile fields a user may change about themselves.
// Fields are pointers so "absent" and "set to empty" stay distinguishable;
// anything not listed here cannot be touched through the update endpoint.
type UserPatch struct {
	Name        *string
	DateOfBirth *time.Time
	Bio         *string
	Location    *string
	Website     *string
	Username    *string
	Avatar      *string
	CoverPhoto  *string
}

// IsZero reports whether the patch changes nothing.
func (p UserPatch) IsZero() bool {
	return p.Name == nil && p.DateOfBirth == nil && p.Bio == nil &&
		p.Location == nil && p.Website == nil && p.Username == nil &&
		p.Avatar == nil && p.CoverPhoto == nil
}

// Profile is the public projection of a user. The type carries neither the
// password hash nor the flow tokens, so they cannot be serialized.
type Profile struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Username    string       `json:"username"`
	Verify      VerifyStatus `json:"verify"`
	Bio         *string      `json:"bio,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Website     *string      `json:"website,omitempty"`
	Avatar      *string      `json:"avatar,omitempty"`
	CoverPhoto  *string      `json:"cover_photo,omitempty"`
	DateOfBirth *time.Time   `json:"date_of_birth,omitempty"`
	Followers   int64        `json:"followers_count"`
	Following   int64        `json:"following_count"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ProfileOf builds the public projection from a full user record.
func ProfileOf(u User, followers, following int64) Profile {
	return Profile{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		Verify:      u.Verify,
		Bio:         u.Bio,
		Location:    u.Location,
		Website:     u.Website,
		Avatar:      u.Avatar,
		CoverPhoto:  u.CoverPhoto,
		DateOfBirth: u.DateOfBirth,
		Followers:   followers,
		Following:   following,
		CreatedAt:   u.CreatedAt,
	}
}
