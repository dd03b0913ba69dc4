package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EngineClaims is the token payload every API call carries. TenantID is
// the multi-tenancy key; Role gates the admin surface.
type EngineClaims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWT validates an HS256 token and returns its claims.
func ParseJWT(tokenString, secret string) (*EngineClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &EngineClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*EngineClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.TenantID == "" {
		return nil, fmt.Errorf("token carries no tenant id")
	}

	return claims, nil
}
