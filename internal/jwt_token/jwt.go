// Package jwttoken issues and validates operator access tokens.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "chequeprint/pkg/domain-errors"
)

const defaultIssuer = "chequeprint"

// OperatorClaims are the claims carried by an operator token. The subject is
// the operator id.
type OperatorClaims struct {
	Permissions []string `json:"perms,omitempty"`
	jwt.RegisteredClaims
}

type JWTService struct {
	signingKey []byte
	issuer     string
}

func NewJWTService(signingKey string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     defaultIssuer,
	}
}

func (s *JWTService) GenerateOperatorToken(operatorID string, permissions []string, expiresIn time.Duration) (string, error) {
	if operatorID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "operator id is required")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, OperatorClaims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*OperatorClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*OperatorClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no operator")
	}
	return claims, nil
}
