package services

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"time"

	"petitshop/internal/config"
	"petitshop/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// minKeyLength is the shortest HS256 key used as is; shorter keys are stretched.
const minKeyLength = 32

// Identity is what a valid credential says about its bearer.
type Identity struct {
	UserID uint
	Role   models.Role
	Name   string
}

// Claims is the JWT payload.
type Claims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.StandardClaims
}

// TokenService issues and validates bearer credentials.
type TokenService struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService from the JWT settings.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		key:    signingKey(cfg.Key),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// signingKey stretches short secrets to 32 bytes with SHA-256.
func signingKey(secret string) []byte {
	if len(secret) >= minKeyLength {
		return []byte(secret)
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Issue signs a credential for user.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role.String(),
		Name:   user.Name,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.issuer,
			Audience:  s.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Validate parses a credential and returns the identity it carries.
func (s *TokenService) Validate(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	// StandardClaims.Valid only checks the time window.
	if !claims.VerifyIssuer(s.issuer, true) || !claims.VerifyAudience(s.issuer, true) {
		return nil, fmt.Errorf("invalid token issuer or audience")
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid token role: %w", err)
	}
	return &Identity{UserID: claims.UserID, Role: role, Name: claims.Name}, nil
}
