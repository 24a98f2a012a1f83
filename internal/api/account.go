package api

import (
	"encoding/base64"

	"github.com/accountd-dev/accountd/internal/domain"
)

// Request DTOs

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResendActivationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RequestResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	ResetCode string `json:"reset_code" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword    string `json:"oldpassword" validate:"required"`
	NewPassword    string `json:"newpassword" validate:"required"`
	RepeatPassword string `json:"repeatpassword" validate:"required"`
}

type ChangeEmailRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Response DTOs

// AccountResponse is the only outward-facing account shape. It never carries
// the password hash or either one-time code.
type AccountResponse struct {
	Id          domain.AccountId `json:"id"`
	Email       string           `json:"email"`
	DisplayName string           `json:"display_name"`
	IsConfirmed bool             `json:"is_confirmed"`
	Image       *string          `json:"image,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// NewAccountResponse derives the public representation of an account.
// Profile images are stored as JPEG thumbnails, so the data URI is always
// image/jpeg.
func NewAccountResponse(acc domain.Account) AccountResponse {
	resp := AccountResponse{
		Id:          acc.Id,
		Email:       acc.Email,
		DisplayName: acc.DisplayName,
		IsConfirmed: acc.IsConfirmed(),
	}
	if len(acc.Image) > 0 {
		uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(acc.Image)
		resp.Image = &uri
	}
	return resp
}
