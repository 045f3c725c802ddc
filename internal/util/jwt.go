package util

import (
	"errors"
	"fmt"
	"time"

	"coffeeshop-backend/config"
	"coffeeshop-backend/internal/model"

	"github.com/dgrijalva/jwt-go"
)

func tokenTTL() time.Duration {
	hours := config.AppConfig.JWTExpirationHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// GenerateToken 签发包含用户ID和角色的令牌
func GenerateToken(userID int, role model.UserRole) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(tokenTTL()).Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidateToken 校验令牌并还原调用方身份
func ValidateToken(tokenString string) (model.Principal, error) {
	if tokenString == "" {
		return model.Principal{}, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return model.Principal{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return model.Principal{}, errors.New("无效的令牌")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return model.Principal{}, errors.New("无效的用户ID")
	}
	role, _ := claims["role"].(string)
	if !model.UserRole(role).Valid() {
		return model.Principal{}, errors.New("无效的用户角色")
	}

	return model.Principal{UserID: int(userID), Role: model.UserRole(role)}, nil
}
