package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrExpiredSessionToken = errors.New("session token is expired")
)

const defaultSessionDuration = 7 * 24 * time.Hour

// SessionTokenClaims is the payload of the session cookie: the transient
// user id plus the email the durable identity is resolved from.
type SessionTokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

type JWTManagerInterface interface {
	GenerateSessionJWT(userID, email string, duration time.Duration) (string, error)
	ValidateSessionToken(tokenString string) (*SessionTokenClaims, error)
}

type JWTManager struct {
	secret string
}

func NewJWTManager(secret string) JWTManagerInterface {
	return &JWTManager{
		secret: secret,
	}
}

func (j *JWTManager) GenerateSessionJWT(userID, email string, duration time.Duration) (string, error) {
	claims := &SessionTokenClaims{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

func (j *JWTManager) ValidateSessionToken(tokenString string) (*SessionTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(j.secret), nil
	})

	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			if validationErr.Errors&(jwt.ValidationErrorExpired) != 0 {
				return nil, ErrExpiredSessionToken
			}
		}
		return nil, err
	}

	claims, ok := token.Claims.(*SessionTokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidSessionToken
	}

	return claims, nil
}
