package usecase

import "github.com/vasapolrittideah/elearning-api/shared/apperror"

var (
	ErrLoginRequired          = apperror.New(apperror.Unauthenticated, "Please login to access this resource")
	ErrAccessTokenInvalid     = apperror.New(apperror.Unauthenticated, "Access token is invalid or has expired")
	ErrRefreshTokenInvalid    = apperror.New(apperror.Unauthenticated, "Could not refresh token")
	ErrSessionExpired         = apperror.New(apperror.Unauthenticated, "Please login again")
	ErrInvalidCredentials     = apperror.New(apperror.Unauthenticated, "Invalid email or password")
	ErrSocialTokenInvalid     = apperror.New(apperror.Unauthenticated, "Social sign-in could not be verified")
	ErrEmailAlreadyExists     = apperror.New(apperror.Conflict, "Email already exists")
	ErrActivationTokenInvalid = apperror.New(apperror.BadRequest, "Activation token is invalid or has expired")
	ErrInvalidActivationCode  = apperror.New(apperror.BadRequest, "Invalid Activation Code")
	ErrActivationTokenUsed    = apperror.New(apperror.Conflict, "Activation token has already been used")
	ErrActivationMailFailed   = apperror.New(apperror.UpstreamFailure, "Failed to send activation email")
	ErrUserNotFound           = apperror.New(apperror.NotFound, "User not found")
	ErrAvatarUploadFailed     = apperror.New(apperror.UpstreamFailure, "Failed to upload avatar")
	ErrInvalidCourseID        = apperror.New(apperror.BadRequest, "Invalid course id")
	ErrInvalidContentID       = apperror.New(apperror.BadRequest, "Invalid content id")
	ErrInvalidQuestionID      = apperror.New(apperror.BadRequest, "Invalid question id")
	ErrCourseNotFound         = apperror.New(apperror.NotFound, "Course not found")
	ErrContentNotFound        = apperror.New(apperror.NotFound, "Course content not found")
	ErrQuestionNotFound       = apperror.New(apperror.NotFound, "Question not found")
	ErrCourseNotOwned         = apperror.New(apperror.Forbidden, "You are not eligible to access this course")
	ErrThumbnailUploadFailed  = apperror.New(apperror.UpstreamFailure, "Failed to upload course thumbnail")
	ErrReplyMailFailed        = apperror.New(apperror.UpstreamFailure, "Answer saved but the notification email could not be sent")
)

// wrap attaches cause to a copy of sentinel. The result still matches sentinel
// with errors.Is.
func wrap(sentinel *apperror.Error, cause error) error {
	return apperror.Wrap(sentinel.Kind, sentinel.Message, cause)
}
