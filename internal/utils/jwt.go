package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// MailTokenSigner issues the short-lived signed tokens embedded in
// verification and password-reset links. The only claim is the email address.
type MailTokenSigner struct {
	Secret []byte
	TTL    time.Duration
}

type mailClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s MailTokenSigner) Generate(email string) (string, error) {
	ttl := s.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := mailClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

// Decode returns the email carried by the token, or ErrInvalidToken for
// anything unparseable, forged or expired. Callers cannot distinguish those
// cases and are not supposed to.
func (s MailTokenSigner) Decode(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &mailClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.Secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*mailClaims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
