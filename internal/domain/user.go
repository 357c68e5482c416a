package domain

import "time"

// User is the persisted credential record. Token fields hold only SHA-256
// hashes of the tokens emailed to the user; the plaintext exists transiently
// in the outgoing email and the verification request, never at rest.
type User struct {
	UserID                string     `json:"id" dynamodbav:"user_id"`
	Email                 string     `json:"email" dynamodbav:"email"`
	PasswordHash          string     `json:"-" dynamodbav:"password_hash"`
	Role                  string     `json:"role" dynamodbav:"role"`
	EmailVerified         bool       `json:"email_verified" dynamodbav:"email_verified"`
	VerificationTokenHash string     `json:"-" dynamodbav:"email_verification_token_hash,omitempty"`
	VerificationExpiresAt int64      `json:"-" dynamodbav:"email_verification_token_expiry,omitempty"` // Unix seconds, 0 = unset
	ResetTokenHash        string     `json:"-" dynamodbav:"password_reset_token_hash,omitempty"`
	ResetExpiresAt        int64      `json:"-" dynamodbav:"password_reset_token_expiry,omitempty"` // Unix seconds, 0 = unset
	AuthProvider          string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub             string     `json:"-" dynamodbav:"google_sub,omitempty"`
	CreatedAt             time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt             time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}
