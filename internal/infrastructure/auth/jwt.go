package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// DevSecretKey используется, если JWT_SECRET_KEY не задан
	DevSecretKey = "your-secret-key-change-in-production"

	DefaultAccessTTL = 15 * time.Minute
)

type JWTManager struct {
	secretKey []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewJWTManager(secretKey string, accessTTL time.Duration) *JWTManager {
	if secretKey == "" {
		secretKey = DevSecretKey
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &JWTManager{
		secretKey: []byte(secretKey),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// GenerateAccessToken выпускает access token для доски пользователя
func (m *JWTManager) GenerateAccessToken(userID, email string) (string, error) {
	if userID == "" {
		return "", errors.New("user_id is required")
	}
	now := m.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     now.Add(m.accessTTL).Unix(),
		"iat":     now.Unix(),
		"type":    "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken проверяет access token
func (m *JWTManager) ValidateAccessToken(tokenString string) (*entity.JWTClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	// Проверяем тип токена
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return nil, fmt.Errorf("invalid token type")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("invalid user_id in token")
	}

	email, _ := claims["email"].(string)

	return &entity.JWTClaims{
		UserID: userID,
		Email:  email,
	}, nil
}
