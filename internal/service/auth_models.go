package service

import (
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/entity"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/session"
)

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// LoginResult pairs the identity to bind on the session with the freshly
// issued refresh credential.
type LoginResult struct {
	Identity     session.Identity
	RefreshToken *entity.RefreshToken
}
