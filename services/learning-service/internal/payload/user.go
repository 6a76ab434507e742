package payload

import "github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"

type UpdateUserInfoRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdateAvatarRequest carries the new avatar as a remote URL or a data URI.
type UpdateAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

type UserResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}
