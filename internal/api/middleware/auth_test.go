package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artfolio/marketplace-ledger/internal/api/middleware"
	"github.com/artfolio/marketplace-ledger/internal/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

var callerAddress = common.HexToAddress("0x5aeda56215b167893e80b4fe645ba6d5bab767de")

// newTestKeyPair generates an RSA key and returns it with the PEM-encoded
// public key as it would appear in configuration
func newTestKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	publicKeyDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	publicKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicKeyDER,
	})
	return privateKey, string(publicKeyPEM)
}

func signToken(t *testing.T, key *rsa.PrivateKey, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

// authRouter wires the Auth middleware in front of a handler that echoes
// the resolved caller address
func authRouter(cfg middleware.AuthConfig) *gin.Engine {
	router := gin.New()
	router.GET("/protected", middleware.Auth(cfg), func(c *gin.Context) {
		caller, ok := middleware.CallerAddress(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no caller"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"caller": caller.Hex()})
	})
	return router
}

func TestAuth_ValidToken(t *testing.T) {
	privateKey, publicKeyPEM := newTestKeyPair(t)
	router := authRouter(middleware.AuthConfig{JWTPublicKey: publicKeyPEM})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, privateKey, callerAddress.Hex()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), callerAddress.Hex())
}

func TestAuth_Rejections(t *testing.T) {
	privateKey, publicKeyPEM := newTestKeyPair(t)
	otherKey, _ := newTestKeyPair(t)

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "missing header",
			header: "",
		},
		{
			name:   "wrong scheme",
			header: "Basic dXNlcjpwYXNz",
		},
		{
			name:   "garbage token",
			header: "Bearer not.a.jwt",
		},
		{
			name:   "signed with a different key",
			header: "Bearer " + signToken(t, otherKey, callerAddress.Hex()),
		},
		{
			name:   "subject is not an address",
			header: "Bearer " + signToken(t, privateKey, "user-1234"),
		},
	}

	router := authRouter(middleware.AuthConfig{JWTPublicKey: publicKeyPEM})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	privateKey, publicKeyPEM := newTestKeyPair(t)
	router := authRouter(middleware.AuthConfig{JWTPublicKey: publicKeyPEM})

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   callerAddress.Hex(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString(privateKey)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := middleware.AuthConfig{APIKeys: []string{"operator-key"}}

	router := gin.New()
	router.POST("/deposit", middleware.APIKeyAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid key", header: "ApiKey operator-key", wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", header: "ApiKey wrong", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Bearer operator-key", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/deposit", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAPIKeyAuth_NoKeysConfigured(t *testing.T) {
	router := gin.New()
	router.POST("/deposit", middleware.APIKeyAuth(middleware.AuthConfig{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodPost, "/deposit", nil)
	req.Header.Set("Authorization", "ApiKey anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
