package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/chirpnet/chirp/pkg/httpx"
	"github.com/go-playground/validator/v10"
)

// validate is shared across handlers; validator instances cache struct
// metadata so a single one is the intended usage.
var validate = newValidator()

// Usernames are 4 to 15 word characters and cannot be purely numeric, so
// they never collide with numeric route parameters.
var usernameRE = regexp.MustCompile(`^[A-Za-z0-9_]{4,15}$`)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report field names by their json tag so validation errors line up
	// with what the client actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !usernameRE.MatchString(s) {
			return false
		}
		return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0
	})

	return v
}

func isStrongPassword(s string) bool {
	if len(s) < 6 || len(s) > 50 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strongpw"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	DateOfBirth     string `json:"date_of_birth" validate:"omitempty,iso8601"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type VerifyEmailRequest struct {
	EmailVerifyToken string `json:"email_verify_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyForgotPasswordRequest struct {
	ForgotPasswordToken string `json:"forgot_password_token" validate:"required"`
}

type ResetPasswordRequest struct {
	ForgotPasswordToken string `json:"forgot_password_token" validate:"required"`
	Password            string `json:"password" validate:"required,strongpw"`
	ConfirmPassword     string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// UpdateMeRequest is the compiler-enforced allow-list of profile fields a
// user can change. Unknown JSON keys are simply dropped by the decoder.
type UpdateMeRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,iso8601"`
	Bio         *string `json:"bio" validate:"omitempty,max=200"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Website     *string `json:"website" validate:"omitempty,max=400"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Avatar      *string `json:"avatar" validate:"omitempty,max=400"`
	CoverPhoto  *string `json:"cover_photo" validate:"omitempty,max=400"`
}

type FollowRequest struct {
	FollowedUserID string `json:"followed_user_id" validate:"required"`
}

// decodeBody parses the JSON body without validation, for gate-first
// endpoints whose only meaningful field is the token itself.
func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// decodeAndValidate parses the JSON body into dst and runs the schema
// validation, writing the error response itself. Returns false when the
// handler should stop.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		fields := map[string]string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fieldMessage(fe)
			}
		}
		httpx.WriteFieldErrors(w, http.StatusBadRequest, msgValidationError, fields)
		return false
	}
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", fe.Field(), strings.ToLower(fe.Param()))
	case "strongpw":
		return fmt.Sprintf("%s must be 6-50 characters with upper, lower and digit", fe.Field())
	case "iso8601":
		return fmt.Sprintf("%s must be an ISO8601 date", fe.Field())
	case "username":
		return fmt.Sprintf("%s must be 4-15 letters, numbers or underscores and not purely numeric", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// parseDate converts a validated ISO8601 string to a time pointer.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
