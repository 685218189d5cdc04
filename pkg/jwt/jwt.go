// Package jwt tokens de sesión HS256. Los emite el emisor de desarrollo y los verifica
// el middleware, incluidos los del proveedor de identidad externo.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// leeway tolerancia de reloj entre el emisor y esta instancia.
const leeway = 30 * time.Second

var (
	ErrNoSecret = errors.New("jwt: secret vacío")
	ErrExpired  = errors.New("jwt: token expirado")
	ErrInvalid  = errors.New("jwt: token inválido")
)

// Claims estándar más user_id y role propios. role es informativo: la autorización
// sale del perfil almacenado, que puede cambiar mientras el token sigue vigente.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Generate firma un token para userID que vence en expMinutes.
func Generate(secret, userID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	issued := time.Now()
	expires := issued.Add(time.Duration(expMinutes) * time.Minute)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", userID, issued.UnixNano()),
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}).SignedString([]byte(secret))
}

// Parse verifica firma HS256 y vencimiento (obligatorio) y devuelve el usuario:
// user_id si viene, si no sub (tokens del proveedor externo).
func Parse(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case err != nil:
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if claims.UserID != "" {
		return claims.UserID, nil
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: sin sujeto", ErrInvalid)
	}
	return claims.Subject, nil
}
