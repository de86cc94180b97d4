package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/templateapi/go-todo/models"
)

const tokenTTL = 24 * time.Hour

// AuthService validates credentials and issues bearer tokens. A nil user with
// a nil error means the credentials were wrong; an error means an internal
// fault.
type AuthService interface {
	Authenticate(username, password string) (*models.User, error)
}

type jwtAuthService struct {
	username     string
	passwordHash []byte
	secret       []byte
}

// NewAuthService builds a single-principal auth service. passwordHash must be
// a bcrypt hash; secret signs issued tokens.
func NewAuthService(username string, passwordHash []byte, secret []byte) AuthService {
	return &jwtAuthService{
		username:     username,
		passwordHash: passwordHash,
		secret:       secret,
	}
}

func (s *jwtAuthService) Authenticate(username, password string) (*models.User, error) {
	if username != s.username {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, nil
		}
		return nil, fmt.Errorf("comparing password hash: %w", err)
	}

	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &models.User{Username: username, Token: signed}, nil
}

// HashPassword bcrypt-hashes a plaintext password, used when no precomputed
// hash is configured.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
