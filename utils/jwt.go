package utils

import (
	"errors"
	"fmt"

	"serviq/config"

	"github.com/golang-jwt/jwt"
)

// ActorClaims are the claims this service reads off a bearer token.
// Token issuance is owned by the auth service; we only validate.
type ActorClaims struct {
	Subject string
	Role    string
}

// ParseToken validates a signed JWT and extracts the actor claims.
func ParseToken(tokenStr string) (*ActorClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, errors.New("token missing sub or role claim")
	}
	return &ActorClaims{Subject: sub, Role: role}, nil
}
