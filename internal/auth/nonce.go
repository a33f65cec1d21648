package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// DefaultNonceDuration nonce 默认有效期
const DefaultNonceDuration = 24 * time.Hour

// ErrInvalidNonce nonce 校验失败
var ErrInvalidNonce = errors.New("invalid nonce")

// NonceClaims 防伪令牌声明，绑定动作名与用户
type NonceClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// NonceManager 基于 HS256 签名的短期防伪令牌
type NonceManager struct {
	jwt *JWTManager
	ttl time.Duration
}

// NewNonceManager 创建 nonce 管理器
func NewNonceManager(secretKey, issuer string, ttl time.Duration) *NonceManager {
	if ttl <= 0 {
		ttl = DefaultNonceDuration
	}
	return &NonceManager{
		// a separate key: an access token never passes as a nonce
		jwt: NewJWTManager(deriveKey(secretKey, "maf nonce"), issuer, ttl),
		ttl: ttl,
	}
}

// Create 为指定用户和动作签发 nonce
func (n *NonceManager) Create(action, userID string) (string, error) {
	if action == "" {
		return "", fmt.Errorf("nonce action is required")
	}

	now := time.Now()
	claims := &NonceClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(n.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    n.jwt.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audienceNonce},
		},
	}
	return n.jwt.sign(claims)
}

// Verify 校验 nonce 是否为该用户、该动作签发且未过期
func (n *NonceManager) Verify(token, action, userID string) error {
	claims := &NonceClaims{}
	if err := n.jwt.parse(token, claims, audienceNonce); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}
	if claims.Action != action || claims.Subject != userID {
		return ErrInvalidNonce
	}
	return nil
}

// deriveKey expands secret into a 32 byte key bound to info
func deriveKey(secret, info string) string {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		// sha256 hkdf only fails past 255*32 bytes
		panic(err)
	}
	return string(key)
}
