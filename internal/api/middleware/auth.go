package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/artfolio/marketplace-ledger/internal/domain"
	"github.com/artfolio/marketplace-ledger/internal/logger"
)

const (
	// CallerAddressKey is the gin context key holding the authenticated
	// caller's address
	CallerAddressKey = "caller_address"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
}

// Auth returns a gin middleware that authenticates wallet-bound calls.
// The caller presents a Bearer JWT whose subject is their hex address;
// the parsed address is stored in the request context and becomes the
// caller identity for every mutating operation.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticateJWT(c.GetHeader("Authorization"), cfg)
		if err != nil {
			unauthorized(c, err)
			return
		}

		caller, err := domain.ParseAddress(claims.Subject)
		if err != nil {
			unauthorized(c, fmt.Errorf("token subject is not an address: %w", err))
			return
		}

		c.Set(CallerAddressKey, caller)
		c.Next()
	}
}

// APIKeyAuth returns a gin middleware for service-to-service calls
// authenticated with a static API key
func APIKeyAuth(cfg AuthConfig) gin.HandlerFunc {
	validKeys := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			validKeys[key] = true
		}
	}

	return func(c *gin.Context) {
		authType, credentials, err := splitAuthHeader(c.GetHeader("Authorization"))
		if err != nil {
			unauthorized(c, err)
			return
		}
		if authType != "apikey" {
			unauthorized(c, fmt.Errorf("unsupported authorization type: %s", authType))
			return
		}
		if len(validKeys) == 0 {
			unauthorized(c, errors.New("no API keys configured"))
			return
		}
		if !validKeys[credentials] {
			unauthorized(c, errors.New("invalid API key"))
			return
		}

		c.Next()
	}
}

// CallerAddress returns the authenticated caller address set by Auth
func CallerAddress(c *gin.Context) (common.Address, bool) {
	value, ok := c.Get(CallerAddressKey)
	if !ok {
		return common.Address{}, false
	}
	caller, ok := value.(common.Address)
	return caller, ok
}

func unauthorized(c *gin.Context, err error) {
	logger.Warn("Authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": "Authentication failed",
			"details": err.Error(),
		},
	})
}

func splitAuthHeader(authHeader string) (string, string, error) {
	if authHeader == "" {
		return "", "", errors.New("missing Authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", "", errors.New("invalid Authorization header format")
	}
	return strings.ToLower(parts[0]), parts[1], nil
}

// authenticateJWT validates a Bearer token and returns its claims
func authenticateJWT(authHeader string, cfg AuthConfig) (*jwt.RegisteredClaims, error) {
	authType, credentials, err := splitAuthHeader(authHeader)
	if err != nil {
		return nil, err
	}
	if authType != "bearer" {
		return nil, fmt.Errorf("unsupported authorization type: %s", authType)
	}
	return validateJWT(credentials, cfg.JWTPublicKey)
}

// validateJWT validates a JWT token with RSA signature and returns claims
func validateJWT(tokenString string, publicKeyPEM string) (*jwt.RegisteredClaims, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not configured")
	}

	publicKey, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// parseRSAPublicKey parses an RSA public key from PEM format
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		// Try parsing as PKCS1 format
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return rsaKey, nil
}
