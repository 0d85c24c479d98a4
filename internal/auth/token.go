// internal/auth/token.go
//
// JWT issuance and validation (HS256).
//
// Claims carry the employee id plus an explicit role string; nothing in
// the payload is derivable from the id's value, and nothing sensitive
// (password hash, email) ever enters the token.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload shape.
type Claims struct {
	jwt.RegisteredClaims
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
}

// GenerateToken creates a signed access JWT for the given identity.
func GenerateToken(ident Identity, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		EmployeeID: ident.EmployeeID.String(),
		Role:       ident.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a JWT string, returning the identity
// it asserts.
func ValidateToken(tokenString, secret string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	id, err := uuid.Parse(claims.EmployeeID)
	if err != nil {
		return Identity{}, errors.New("malformed employee id claim")
	}
	if claims.Role == "" {
		return Identity{}, errors.New("missing role claim")
	}
	return Identity{EmployeeID: id, Role: claims.Role}, nil
}
