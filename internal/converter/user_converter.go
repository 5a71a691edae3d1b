package converter

import (
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsActive:  user.Active(),
		CreatedAt: user.CreatedAt,
	}
}
