package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.9:54321"
	require.Equal(t, "ratelimit:ip:203.0.113.9", KeyByIP(req))

	// The last XFF entry is the closest trusted proxy hop.
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.50")
	require.Equal(t, "ratelimit:ip:203.0.113.50", KeyByIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.77")
	require.Equal(t, "ratelimit:ip:198.51.100.77", KeyByIP(req))
}

func TestPerMinute(t *testing.T) {
	limit := PerMinute(100, 20)
	require.Equal(t, 100, limit.Rate)
	require.Equal(t, 20, limit.Burst)
	require.Equal(t, time.Minute, limit.Period)
}

func TestLocalLimiter_BurstThenThrottle(t *testing.T) {
	l := newLocalLimiter()
	limit := PerMinute(60, 3)

	for i := 0; i < 3; i++ {
		res, err := l.allow("k", limit)
		require.NoError(t, err)
		require.Equal(t, 1, res.Allowed, "request %d should pass", i)
	}

	res, err := l.allow("k", limit)
	require.NoError(t, err)
	require.Equal(t, 0, res.Allowed)
	require.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestLocalLimiter_KeysIsolated(t *testing.T) {
	l := newLocalLimiter()
	limit := PerMinute(60, 1)

	res, err := l.allow("a", limit)
	require.NoError(t, err)
	require.Equal(t, 1, res.Allowed)

	res, err = l.allow("a", limit)
	require.NoError(t, err)
	require.Equal(t, 0, res.Allowed)

	// A different key has its own bucket.
	res, err = l.allow("b", limit)
	require.NoError(t, err)
	require.Equal(t, 1, res.Allowed)
}
