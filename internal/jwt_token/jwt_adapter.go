package jwttoken

import (
	authmw "chequeprint/pkg/platform/middleware/auth"
	"chequeprint/pkg/platform/strings"
)

// ToMiddlewareClaims maps validated claims to the middleware's view.
// Permission names are compared case-insensitively.
func ToMiddlewareClaims(claims *OperatorClaims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		OperatorID:  claims.Subject,
		Permissions: strings.NormalizeList(claims.Permissions),
		JTI:         claims.ID,
	}
}

// JWTServiceAdapter lets the auth middleware validate tokens without
// depending on this package.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
