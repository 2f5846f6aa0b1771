package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type JwtCustomClaim struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.StandardClaims
}

func getJwtSecret() []byte {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return []byte("Invest-Secret")
	}
	return []byte(secret)
}

func hoursFromEnv(key string, def int) time.Duration {
	hours, err := strconv.Atoi(os.Getenv(key))
	if err != nil || hours <= 0 {
		hours = def
	}
	return time.Duration(hours) * time.Hour
}

// AccessTokenLifespan reads TOKEN_HOUR_LIFESPAN (default 1h).
func AccessTokenLifespan() time.Duration {
	return hoursFromEnv("TOKEN_HOUR_LIFESPAN", 1)
}

// RefreshTokenLifespan reads REFRESH_TOKEN_HOUR_LIFESPAN (default 14 days).
func RefreshTokenLifespan() time.Duration {
	return hoursFromEnv("REFRESH_TOKEN_HOUR_LIFESPAN", 336)
}

// JwtGenerate signs a token of the given type and returns it with its id (jti).
func JwtGenerate(userID int, email string, tokenType string) (string, string, error) {
	lifespan := AccessTokenLifespan()
	if tokenType == TokenTypeRefresh {
		lifespan = RefreshTokenLifespan()
	}
	now := time.Now()
	tokenId := uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:        userID,
		Email:     email,
		TokenType: tokenType,
		StandardClaims: jwt.StandardClaims{
			Id:        tokenId,
			ExpiresAt: now.Add(lifespan).Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	token, err := t.SignedString(getJwtSecret())
	if err != nil {
		return "", "", err
	}

	return token, tokenId, nil
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return getJwtSecret(), nil
	})
}

// ParseToken validates the token and checks its type.
func ParseToken(token string, tokenType string) (*JwtCustomClaim, error) {
	validate, err := JwtValidate(token)
	if err != nil || !validate.Valid {
		return nil, ErrorUnauthorized
	}
	claim, ok := validate.Claims.(*JwtCustomClaim)
	if !ok || claim.TokenType != tokenType {
		return nil, ErrorUnauthorized
	}
	if claim.ID <= 0 {
		return nil, ErrorUnauthorized
	}
	return claim, nil
}
