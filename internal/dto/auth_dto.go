package dto

import "github.com/Dhinesh-M-7/BlogApplicationBackend/internal/entity"

type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LogoutRequest struct {
	LogoutOthers bool `json:"logoutOthers"`
}

type ChangePasswordRequest struct {
	OldPassword  string `json:"oldPassword" validate:"required"`
	NewPassword  string `json:"newPassword" validate:"required"`
	LogoutOthers bool   `json:"logoutOthers"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsValidated bool   `json:"isvalidated"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	return UserResponse{
		Name:        user.Name,
		Email:       user.Email,
		IsValidated: user.IsValidated,
	}
}

// SessionResponse deliberately omits the numeric user id.
type SessionResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SignUpResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type DetailResponse struct {
	Message  string          `json:"message"`
	UserData SessionResponse `json:"userData"`
}
