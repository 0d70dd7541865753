package util

import (
	"strconv"
	"sync"
	"time"

	"simorder/config"

	jwt "github.com/golang-jwt/jwt/v5"
)

type JWTClaims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// JWTMessage is the decoded token content handed to handlers.
type JWTMessage struct {
	UserID      uint      `json:"userID"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type TokenManager struct {
	secretKey      string
	accessTokenTTL time.Duration
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		cfg := config.GetConfig()
		tokenMgr = NewTokenManager(cfg.Auth.TokenSecret,
			time.Duration(cfg.Auth.AccessTokenExpiryHour)*time.Hour)
	})
	return tokenMgr
}

func NewTokenManager(secretKey string, accessTokenTTL time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:      secretKey,
		accessTokenTTL: accessTokenTTL,
	}
}

// CreateToken issues an access token whose subject is the user id (decimal
// string) and whose permissions claim carries the resolved permission codes.
func (tm *TokenManager) CreateToken(userID uint, permissions []string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secretKey))
}

// CheckToken verifies the token signature and expiry and returns the
// decoded message.
func (tm *TokenManager) CheckToken(requestToken string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	})
	if err != nil {
		return JWTMessage{}, err
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return JWTMessage{}, err
	}
	msg := JWTMessage{
		UserID:      uint(userID),
		Permissions: claims.Permissions,
	}
	if claims.ExpiresAt != nil {
		msg.ExpiresAt = claims.ExpiresAt.Time
	}
	return msg, nil
}
