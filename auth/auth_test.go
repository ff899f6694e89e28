package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vireolabs/beacon/internal/httpclient"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// publicKeyPEM encodes the public half of key as PKIX PEM, the shape the
// static key configuration accepts.
func publicKeyPEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// jwksJSON renders a single-key JWKS document for the public half of key.
func jwksJSON(t *testing.T, key *rsa.PrivateKey, kid string) []byte {
	t.Helper()
	set := jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{{
			Key:       &key.PublicKey,
			KeyID:     kid,
			Algorithm: "RS256",
			Use:       "sig",
		}},
	}
	data, err := json.Marshal(set)
	require.NoError(t, err)
	return data
}

// jwksServer serves a static JWKS document for key.
func jwksServer(t *testing.T, key *rsa.PrivateKey, kid string) *httptest.Server {
	t.Helper()
	body := jwksJSON(t, key, kid)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
}

// signToken signs claims with key using RS256, setting any extra headers
// (kid, jku) the test needs.
func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.Claims, headers map[string]interface{}) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	for k, v := range headers {
		token.Header[k] = v
	}
	raw, err := token.SignedString(key)
	require.NoError(t, err)
	return raw
}

// signVisa signs a visa token carrying the given assertion, with the jku
// header pointing at the issuer's key server.
func signVisa(t *testing.T, key *rsa.PrivateKey, kid, jku, issuer string, assertion VisaAssertion, expiry time.Time) string {
	t.Helper()
	claims := visaClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "researcher@example.org",
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Visa: assertion,
	}
	return signToken(t, key, claims, map[string]interface{}{"kid": kid, "jku": jku})
}

// testCache builds a key cache backed by a localhost-permissive HTTP client.
func testCache(srv *httptest.Server, ttl time.Duration) *KeyCache {
	return NewKeyCache(ttl, httpclient.WrapClient(srv.Client()))
}
