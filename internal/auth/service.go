package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	userDatamodel "github.com/haddadrachelle2-png/testdoc/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByUsername(username string) (*userDatamodel.User, error)
	GetGroup(groupID int64) (*userDatamodel.Group, error)
}

// Service resolves credentials into signed identity tokens.
type Service struct {
	userRepo       RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
}

func NewService(userRepo RepositoryAPI, tokenGen TokenGeneratorAPI) *Service {
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		TokenTTL: ttl,
	}
}

// Authenticate validates credentials and returns a signed identity token.
// The admin-group flag is read from the user's group row here, once, so the
// token carries everything downstream authorization needs.
func (s *Service) Authenticate(dto LoginDTO) (TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return TokenResponse{}, err
	}

	user, err := s.userRepo.GetByUsername(dto.Username)
	if err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}

	group, err := s.userRepo.GetGroup(user.GroupID)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("resolve group for user %d: %w", user.ID, err)
	}

	token, err := s.tokenGenerator.GenerateToken(&Identity{
		ID:           user.ID,
		Username:     user.Username,
		GroupID:      user.GroupID,
		IsGroupAdmin: user.IsGroupAdmin,
		IsAdminGroup: group.IsAdminGroup,
	})
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{Token: token}, nil
}

// ValidateAccessToken validates a token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateToken signs the identity into an HS256 token with the configured TTL.
func (j *JWTTokenGenerator) GenerateToken(identity *Identity) (string, error) {
	expiresAt := time.Now().Add(j.TokenTTL)

	claims := &Claims{
		UserID:       identity.ID,
		Username:     identity.Username,
		GroupID:      identity.GroupID,
		IsGroupAdmin: identity.IsGroupAdmin,
		IsAdminGroup: identity.IsAdminGroup,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   identity.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns claims.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
