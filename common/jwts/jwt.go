package jwts

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims 玩家身份令牌，PlayerID 一次签发，跨连接保持不变
type CustomClaims struct {
	PlayerID string `json:"playerID"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// NewClaims 创建从当前时间起 ttl 内有效的 claims
func NewClaims(playerID, name string, ttl time.Duration) *CustomClaims {
	now := time.Now()
	return &CustomClaims{
		PlayerID: playerID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func GetToken(claims *CustomClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(token, secret string) (*CustomClaims, error) {
	claims := new(CustomClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token not valid")
	}
	if claims.PlayerID == "" {
		return nil, errors.New("token 中 playerID 为空")
	}
	return claims, nil
}
