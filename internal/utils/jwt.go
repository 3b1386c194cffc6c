package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-errors/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidAPIKey = errors.New("invalid API key")

// APIKeyClaims identify the user an admin API key was issued to.
type APIKeyClaims struct {
	jwt.RegisteredClaims
}

// GenerateJWT issues an API key for userID signed with signingKey.
func GenerateJWT(signingKey string, userID uint) (string, error) {
	claims := APIKeyClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  strconv.FormatUint(uint64(userID), 10),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(signingKey))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// VerifyJWT checks an API key and returns the user ID it was issued to.
func VerifyJWT(signingKey string, tokenString string) (uint, error) {
	claims := new(APIKeyClaims)
	token, err := jwt.NewParser(
		jwt.WithLeeway(5*time.Minute),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method: %s", token.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAPIKey, err)
	}
	if !token.Valid {
		return 0, ErrInvalidAPIKey
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidAPIKey, claims.Subject)
	}
	return uint(uid), nil
}
