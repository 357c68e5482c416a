package http

import (
	"context"

	"github.com/siuupriyanshu/auth-core/internal/domain"
)

// UserRepository is the minimal interface the router requires from the
// credential store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	SetVerificationToken(ctx context.Context, email, tokenHash string, expiresAt int64) error
	SetResetToken(ctx context.Context, email, tokenHash string, expiresAt int64) error
	ConsumeVerificationToken(ctx context.Context, email, tokenHash string, now int64) error
	ConsumeResetToken(ctx context.Context, email, tokenHash, newPasswordHash string, now int64) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}
