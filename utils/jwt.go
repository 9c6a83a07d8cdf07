package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Subject roles carried in session tokens. Staff tokens come from the shared
// floor passcode, customer tokens from a verified OTP.
const (
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

var JWTSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Development fallback, matches .env.example.
		secret = "ExpendioDevSecret1931"
	}
	JWTSecret = []byte(secret)
}

type CustomClaims struct {
	SubjectID uint   `json:"subject_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a session token. Staff sessions last a shift (12h),
// customer sessions only as long as a meal plausibly does (3h).
func GenerateToken(subjectID uint, role string) (string, error) {
	ttl := 12 * time.Hour
	if role == RoleCustomer {
		ttl = 3 * time.Hour
	}

	claims := &CustomClaims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "expendio-foh",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
