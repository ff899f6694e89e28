package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireolabs/beacon/internal/httpclient"
)

func countingJWKSServer(t *testing.T, body []byte, fetches *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
}

func TestKeyCacheHitAvoidsRefetch(t *testing.T) {
	key := newTestKey(t)
	var fetches atomic.Int64
	srv := countingJWKSServer(t, jwksJSON(t, key, "k1"), &fetches)
	defer srv.Close()

	cache := testCache(srv, time.Hour)

	first, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, int64(1), fetches.Load())
	assert.Equal(t, first, second)
}

func TestKeyCacheExpiryTriggersRefetch(t *testing.T) {
	key := newTestKey(t)
	var fetches atomic.Int64
	srv := countingJWKSServer(t, jwksJSON(t, key, "k1"), &fetches)
	defer srv.Close()

	cache := testCache(srv, 1*time.Millisecond)

	_, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, int64(2), fetches.Load())
}

func TestKeyCacheDoesNotCacheFailures(t *testing.T) {
	key := newTestKey(t)
	body := jwksJSON(t, key, "k1")
	var failing atomic.Bool
	failing.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	cache := testCache(srv, time.Hour)

	_, err := cache.Get(context.Background(), srv.URL)
	require.Error(t, err)

	// The failure was not recorded; the next call fetches and succeeds.
	failing.Store(false)
	set, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, set.Keys, 1)
}

func TestKeyCacheRejectsEmptyKeySet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"keys":[]}`))
	}))
	defer srv.Close()

	cache := testCache(srv, time.Hour)

	_, err := cache.Get(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "no keys")
}

func TestKeyCacheConcurrentAccess(t *testing.T) {
	key := newTestKey(t)
	var fetches atomic.Int64
	srv := countingJWKSServer(t, jwksJSON(t, key, "k1"), &fetches)
	defer srv.Close()

	cache := testCache(srv, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), srv.URL)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// At-most-one-fetch is not guaranteed on a concurrent miss, but every
	// caller must get a usable key set and the map must stay consistent.
	set, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, set.Keys, 1)
}

func TestKeyFor(t *testing.T) {
	key := newTestKey(t)
	srv := jwksServer(t, key, "k1")
	defer srv.Close()

	cache := NewKeyCache(time.Hour, httpclient.WrapClient(srv.Client()))
	set, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	got, err := keyFor(set, "k1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	// No kid falls back to the first signature key.
	got, err = keyFor(set, "")
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = keyFor(set, "absent")
	assert.ErrorContains(t, err, "not found")
}
