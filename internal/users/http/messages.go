package http

// User-facing response messages.
const (
	msgLoginSuccess        = "Login success"
	msgRegisterSuccess     = "Register success"
	msgLogoutSuccess       = "Logout success"
	msgEmailVerifySuccess  = "Email verify success"
	msgResendVerifySuccess = "Resend verify email success"
	msgCheckEmailToReset   = "Check email to reset password"
	msgVerifyForgotSuccess = "Verify forgot password success"
	msgResetPwSuccess      = "Reset password success"
	msgGetMeSuccess        = "Get my profile success"
	msgUpdateMeSuccess     = "Update my profile success"
	msgGetProfileSuccess   = "Get profile success"
	msgFollowSuccess       = "Follow success"
	msgAlreadyFollowed     = "Already followed"
	msgUnfollowSuccess     = "Unfollow success"
	msgAlreadyUnfollowed   = "Already unfollowed"

	msgEmailAlreadyVerified = "Email already verified before"
	msgUserNotFound         = "User not found"
	msgBadCredentials       = "Email or password is incorrect"
	msgEmailTaken           = "Email already exists"
	msgUsernameTaken        = "Username already exists"
	msgUsedRefreshToken     = "Used refresh token or not exist"
	msgRefreshTokenRequired = "Refresh token is required"
	msgVerifyTokenRequired  = "Email verify token is required"
	msgForgotTokenRequired  = "Forgot password verify token is required"
	msgInvalidForgotToken   = "Invalid forgot password token"
	msgCannotFollowSelf     = "You can not follow yourself"
	msgValidationError      = "Validation error"
	msgInvalidBody          = "Invalid request body"
	msgInternalError        = "Internal server error"
)
