package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the resolved caller identity baked into every issued token.
// Group membership and the admin-group flag are resolved at login time from
// the user's group row.
type Identity struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	GroupID      int64  `json:"group_id"`
	IsGroupAdmin bool   `json:"is_group_admin"`
	IsAdminGroup bool   `json:"is_admin_group"`
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (TokenResponse, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	HashPassword(password string) (string, error)
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Claims mirrors the identity payload carried by the JWT.
type Claims struct {
	UserID       int64  `json:"id"`
	Username     string `json:"username"`
	GroupID      int64  `json:"group_id"`
	IsGroupAdmin bool   `json:"is_group_admin"`
	IsAdminGroup bool   `json:"is_admin_group"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() *Identity {
	return &Identity{
		ID:           c.UserID,
		Username:     c.Username,
		GroupID:      c.GroupID,
		IsGroupAdmin: c.IsGroupAdmin,
		IsAdminGroup: c.IsAdminGroup,
	}
}

type TokenGeneratorAPI interface {
	GenerateToken(identity *Identity) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret   []byte
	TokenTTL time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
