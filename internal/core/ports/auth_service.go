package ports

import (
	"context"

	"github.com/brightpath/school-portal/internal/core/domain"
)

// RegisterInput carries the fields needed to create a portal account.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (domain.TokenPair, *domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}
