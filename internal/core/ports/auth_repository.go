package ports

import (
	"context"

	"github.com/brightpath/school-portal/internal/core/domain"
)

// AuthRepository is the seam to the external user store. The admission core
// only reads credential principals and, for registration, writes new ones.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
