package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURLBlocksLocalhost(t *testing.T) {
	c := New(5 * time.Second)

	req, err := http.NewRequest(http.MethodGet, "http://localhost:8080/jwks", nil)
	require.NoError(t, err)

	_, err = c.Do(req)
	assert.ErrorContains(t, err, "localhost access blocked")
}

func TestValidateURLBlocksPrivateIP(t *testing.T) {
	c := New(5 * time.Second)

	req, err := http.NewRequest(http.MethodGet, "http://192.168.1.10/jwks", nil)
	require.NoError(t, err)

	_, err = c.Do(req)
	assert.ErrorContains(t, err, "private IP address blocked")
}

func TestValidateURLBlocksUserinfoComponent(t *testing.T) {
	c := New(5 * time.Second)

	req, err := http.NewRequest(http.MethodGet, "http://evil.com@example.com/jwks", nil)
	require.NoError(t, err)

	_, err = c.Do(req)
	assert.ErrorContains(t, err, "userinfo component")
}

func TestValidateURLBlocksUnknownScheme(t *testing.T) {
	c := New(5 * time.Second)

	req, err := http.NewRequest(http.MethodGet, "ftp://example.com/jwks", nil)
	require.NoError(t, err)

	_, err = c.Do(req)
	assert.ErrorContains(t, err, "not allowed")
}

func TestGetJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		w.Write([]byte(`{"keys":["a","b"]}`))
	}))
	defer srv.Close()

	c := WrapClient(srv.Client())

	var out struct {
		Keys []string `json:"keys"`
	}
	err := c.GetJSON(context.Background(), srv.URL, "token123", &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Keys)
}

func TestGetJSONNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := WrapClient(srv.Client())

	var out map[string]interface{}
	err := c.GetJSON(context.Background(), srv.URL, "", &out)
	assert.ErrorContains(t, err, "status 503")
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{"10.0.0.1", "172.16.5.5", "192.168.0.1", "127.0.0.1", "169.254.1.1", "0.0.0.0", "::1", "fc00::1", "fe80::1"}
	for _, s := range private {
		assert.True(t, isPrivateIP(net.ParseIP(s)), s)
	}

	public := []string{"8.8.8.8", "1.1.1.1", "2606:4700::1111"}
	for _, s := range public {
		assert.False(t, isPrivateIP(net.ParseIP(s)), s)
	}
}
