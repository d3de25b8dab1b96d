package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hisworks-api/internal/config"
)

// Claims holds the JWT payload fields the reminder API reads.
type Claims struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

// Provider verifies RS256 JWTs issued by the account service. It can also sign when a
// private key is configured (local tooling and tests).
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
}

// NewProvider loads the public key and, when JWTPrivateKeyPath is set, the private key.
func NewProvider(cfg *config.Config) (*Provider, error) {
	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	p := &Provider{publicKey: pubKey, expiry: cfg.JWTExpiry}

	if cfg.JWTPrivateKeyPath != "" {
		privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		p.privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
	}
	return p, nil
}

// NewProviderFromKeys builds a Provider from parsed keys. priv may be nil.
func NewProviderFromKeys(priv *rsa.PrivateKey, pub *rsa.PublicKey, expiry time.Duration) *Provider {
	return &Provider{privateKey: priv, publicKey: pub, expiry: expiry}
}

func (p *Provider) Sign(userID, deviceID string) (string, error) {
	if p.privateKey == nil {
		return "", errors.New("no private key configured")
	}
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user_id")
	}
	return claims, nil
}
