package ports

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/brightpath/school-portal/internal/core/domain"
)

// Token classes. A token of one class must never verify as the other; the
// classes use distinct signing secrets and carry their class in a claim.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims is the self-contained claim set carried by both token classes.
// Subject holds the user id.
type Claims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the session token pair. All methods are
// pure functions of their inputs and the process-wide signing secrets, so
// they carry no context and need no locking.
type TokenService interface {
	Issue(user *domain.User) (domain.TokenPair, error)
	VerifyAccess(token string) (*Claims, error)
	VerifyRefresh(token string) (*Claims, error)
	Refresh(refreshToken string) (domain.TokenPair, error)
}
