package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"tienda/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// IdentityService verifies the tokens issued by the identity provider and
// decides who may use the admin panel.
type IdentityService struct {
	jwtSecret   []byte
	issuer      string
	adminEmails map[string]struct{}
}

// NewIdentityService creates a new IdentityService. When issuer is empty the
// iss claim is not checked. Admin emails are compared case-insensitively.
func NewIdentityService(jwtSecret, issuer string, adminEmails []string) *IdentityService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &IdentityService{
		jwtSecret:   []byte(jwtSecret),
		issuer:      issuer,
		adminEmails: admins,
	}
}

// Verify parses and validates a token, returning the identity it asserts.
func (s *IdentityService) Verify(tokenString string) (*models.AuthenticatedIdentity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("%w: invalid token: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, fmt.Errorf("%w: token has no valid expiry", ErrUnauthorized)
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected token issuer", ErrUnauthorized)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	email, _ := claims["email"].(string)

	return &models.AuthenticatedIdentity{Subject: sub, Email: email}, nil
}

// IsAdmin reports whether the identity's email is on the admin allow-list.
func (s *IdentityService) IsAdmin(identity *models.AuthenticatedIdentity) bool {
	if identity == nil || identity.Email == "" {
		return false
	}
	_, ok := s.adminEmails[strings.ToLower(identity.Email)]
	return ok
}

// IssueToken signs a token for identity, valid for ttl. It is used by local
// tooling and tests to act as the identity provider.
func (s *IdentityService) IssueToken(identity models.AuthenticatedIdentity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   identity.Subject,
		"email": identity.Email,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
