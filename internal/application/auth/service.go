package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/siuupriyanshu/auth-core/internal/domain"
	"github.com/siuupriyanshu/auth-core/internal/infrastructure/google"
	"github.com/siuupriyanshu/auth-core/internal/infrastructure/smtp"
	"github.com/siuupriyanshu/auth-core/internal/pkg/id"
	pkgtoken "github.com/siuupriyanshu/auth-core/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Single-use tokens expire 24 hours after issuance.
const tokenTTL = 24 * time.Hour

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error)
	VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) error
	ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	GoogleLogin(ctx context.Context, idToken string) (*domain.User, string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	SetVerificationToken(ctx context.Context, email, tokenHash string, expiresAt int64) error
	SetResetToken(ctx context.Context, email, tokenHash string, expiresAt int64) error
	ConsumeVerificationToken(ctx context.Context, email, tokenHash string, now int64) error
	ConsumeResetToken(ctx context.Context, email, tokenHash, newPasswordHash string, now int64) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type jwtSigner interface {
	Sign(userID, email, role string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Payload, error)
}

type service struct {
	repo       userStore
	mailer     smtp.Mailer
	jwt        jwtSigner
	google     googleVerifier
	appBaseURL string
}

type ServiceDeps struct {
	UserRepo       userStore
	Mailer         smtp.Mailer
	JWTProvider    jwtSigner
	GoogleVerifier googleVerifier
	AppBaseURL     string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.UserRepo,
		mailer:     deps.Mailer,
		jwt:        deps.JWTProvider,
		google:     deps.GoogleVerifier,
		appBaseURL: strings.TrimSuffix(deps.AppBaseURL, "/"),
	}
}

// Register creates the user with a pending verification token and emails the
// verification link. The store's conditional create is the uniqueness
// tie-breaker; a duplicate email never triggers an outgoing email.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) error {
	email := normalizeEmail(req.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	tok, err := pkgtoken.New()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:                id.New(),
		Email:                 email,
		PasswordHash:          string(hash),
		Role:                  domain.RoleUser,
		AuthProvider:          domain.ProviderLocal,
		VerificationTokenHash: pkgtoken.Hash(tok),
		VerificationExpiresAt: now.Add(tokenTTL).Unix(),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}

	link := s.link("/verify-email", email, tok)
	if err := s.mailer.SendEmail(email, "Verify your email", smtp.VerificationBody(link)); err != nil {
		return domain.Wrap(domain.KindInternal, "could not send verification email", err)
	}
	return nil
}

// Login issues a session token whenever email and password match a stored
// hash. Verification status is intentionally not a gate here.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", domain.E(domain.KindUnauthorized, "invalid credentials")
	}
	bearer, err := s.jwt.Sign(u.UserID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, bearer, nil
}

// VerifyEmail consumes the verification token. The store enforces single use
// and expiry in one conditional write, so a second presentation of the same
// token fails with an invalid-token error even under concurrency.
func (s *service) VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) error {
	email := normalizeEmail(req.Email)
	return s.repo.ConsumeVerificationToken(ctx, email, pkgtoken.Hash(req.Token), time.Now().Unix())
}

// ForgotPassword issues a reset token for existing accounts. The response is
// identical whether or not the email exists, so callers cannot enumerate
// accounts through this endpoint.
func (s *service) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil
		}
		return err
	}

	tok, err := pkgtoken.New()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(tokenTTL).Unix()
	if err := s.repo.SetResetToken(ctx, u.Email, pkgtoken.Hash(tok), expiresAt); err != nil {
		return err
	}

	link := s.link("/reset-password", u.Email, tok)
	if err := s.mailer.SendEmail(u.Email, "Reset your password", smtp.ResetBody(link)); err != nil {
		return domain.Wrap(domain.KindInternal, "could not send password reset email", err)
	}
	return nil
}

// ResetPassword consumes the reset token and swaps in the new password hash
// in the same conditional write.
func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.ConsumeResetToken(ctx, email, pkgtoken.Hash(req.Token), string(hash), time.Now().Unix())
}

// GoogleLogin verifies a Google ID token and signs the user in, creating the
// account on first login. Google-asserted addresses skip email verification.
func (s *service) GoogleLogin(ctx context.Context, idToken string) (*domain.User, string, error) {
	p, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, "", err
	}
	if p.Email == "" || !p.EmailVerified {
		return nil, "", domain.E(domain.KindUnauthorized, "google account email not verified")
	}
	email := normalizeEmail(p.Email)

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !domain.IsKind(err, domain.KindNotFound) {
			return nil, "", err
		}
		now := time.Now().UTC()
		u = &domain.User{
			UserID:        id.New(),
			Email:         email,
			Role:          domain.RoleUser,
			AuthProvider:  domain.ProviderGoogle,
			GoogleSub:     p.Sub,
			EmailVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			// Lost a creation race, use whoever won.
			if !domain.IsKind(err, domain.KindConflict) {
				return nil, "", err
			}
			if u, err = s.repo.GetByEmail(ctx, email); err != nil {
				return nil, "", err
			}
		}
	}

	bearer, err := s.jwt.Sign(u.UserID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, bearer, nil
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) ListUsers(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	return s.repo.ScanPage(ctx, limit, cursor)
}

func (s *service) link(path, email, tok string) string {
	return fmt.Sprintf("%s%s?token=%s&email=%s", s.appBaseURL, path, tok, url.QueryEscape(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
