package server

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 3)
	rl.now = func() time.Time { return now }
	ip := "127.0.0.1"

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(ip), "request %d should be allowed", i)
	}
	assert.False(t, rl.Allow(ip), "burst exhausted")
	assert.True(t, rl.Allow("10.0.0.1"), "other IPs have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow(ip), "one token refilled")
	assert.False(t, rl.Allow(ip))
}

func TestRateLimiter_Prune(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, 5)
	rl.now = func() time.Time { return now }

	rl.Allow("1.1.1.1")
	now = now.Add(5 * time.Minute)
	rl.Allow("2.2.2.2")
	now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, rl.Prune(10*time.Minute))
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "2.2.2.2")
}

func TestRateLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0.001, 20)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("192.168.0.1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, allowed)
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ml := NewMessageRateLimiter(2, 2)
	ml.now = func() time.Time { return now }

	ok, warnings := ml.AllowMessage("c1")
	assert.True(t, ok)
	assert.Zero(t, warnings)
	ok, _ = ml.AllowMessage("c1")
	assert.True(t, ok)

	ok, warnings = ml.AllowMessage("c1")
	assert.False(t, ok)
	assert.Equal(t, 1, warnings)
	ok, warnings = ml.AllowMessage("c1")
	assert.False(t, ok)
	assert.Equal(t, 2, warnings)

	now = now.Add(time.Second)
	ok, warnings = ml.AllowMessage("c1")
	assert.True(t, ok)
	assert.Equal(t, 2, warnings, "warnings are kept until the client is removed")

	ml.RemoveClient("c1")
	_, warnings = ml.AllowMessage("c1")
	assert.Zero(t, warnings)
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{name: "empty list allows all", allowed: nil, origin: "http://evil.com", want: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "http://any.com", want: true},
		{name: "listed origin", allowed: []string{"http://example.com"}, origin: "http://example.com", want: true},
		{name: "case insensitive", allowed: []string{"http://Example.com"}, origin: "http://EXAMPLE.com", want: true},
		{name: "unlisted origin", allowed: []string{"http://example.com"}, origin: "http://evil.com", want: false},
		{name: "no origin header", allowed: []string{"http://example.com"}, origin: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oc := NewOriginChecker(tt.allowed)
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, oc.Check(req))
		})
	}
}

func TestIPFilter(t *testing.T) {
	t.Parallel()

	f := NewIPFilter([]string{" 10.0.0.1 "})
	assert.False(t, f.IsAllowed("10.0.0.1"))
	assert.True(t, f.IsAllowed("10.0.0.2"))

	f.Block("10.0.0.2")
	assert.False(t, f.IsAllowed("10.0.0.2"))

	f.Unblock("10.0.0.1")
	assert.True(t, f.IsAllowed("10.0.0.1"))
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.2:1234", want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.3"}, remote: "10.0.0.2:1234", want: "198.51.100.3"},
		{name: "remote addr", remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "remote addr without port", remote: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}
