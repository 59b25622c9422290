package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/repository"
)

const (
	TokenExpirationHours = 1
	BcryptCost           = 10
)

// AuthService issues and validates JWTs for machine clients. There are no
// interactive users; a client exchanges its id and secret for a token.
type AuthService struct {
	clientRepo   repository.ClientRepository
	jwtSecret    string
	jwtAlgorithm string
}

func NewAuthService(clientRepo repository.ClientRepository, jwtSecret, jwtAlgorithm string) *AuthService {
	return &AuthService{
		clientRepo:   clientRepo,
		jwtSecret:    jwtSecret,
		jwtAlgorithm: jwtAlgorithm,
	}
}

// TokenClaims are the claims carried by an issued token.
type TokenClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// CreateClient stores a new client and returns it along with the plain
// secret, which is only available at this point.
func (s *AuthService) CreateClient(ctx context.Context, label string) (*domain.Client, string, error) {
	secret := uuid.New().String()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash secret: %w", err)
	}

	client := domain.NewClient(label, string(hash))
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, "", fmt.Errorf("failed to create client: %w", err)
	}

	return client, secret, nil
}

// AuthenticateClient verifies client credentials and returns a signed JWT.
func (s *AuthService) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (string, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return "", fmt.Errorf("invalid client credentials")
	}

	if bcrypt.CompareHashAndPassword([]byte(client.Secret), []byte(clientSecret)) != nil {
		return "", fmt.Errorf("invalid client credentials")
	}

	return s.generateJWT(client.ID)
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateJWT(clientID string) (string, error) {
	method := jwt.GetSigningMethod(s.jwtAlgorithm)
	if method == nil {
		return "", fmt.Errorf("unsupported jwt algorithm: %s", s.jwtAlgorithm)
	}

	now := time.Now()
	claims := TokenClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpirationHours * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
