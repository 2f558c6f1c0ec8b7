package admin

import (
	"fmt"
	"time"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "adminToken"

type Tokens struct {
	Secret []byte
}

func (t Tokens) Sign(sess models.AdminSession) (string, error) {
	issued := time.UnixMilli(sess.Timestamp)
	claims := jwt.MapClaims{
		"sub": sess.Username,
		"iat": issued.Unix(),
		"exp": issued.Add(SessionTTL).Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

// Parse verifies the signature and expiry and returns the admin username.
func (t Tokens) Parse(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(j *jwt.Token) (interface{}, error) {
		if _, ok := j.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", j.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("invalid subject claim")
	}
	return sub, nil
}
