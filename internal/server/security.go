package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// 连续超速多少次后断开连接
const maxRateWarnings = 5

// RateLimiter 按 IP 限制建连速率（令牌桶）
type RateLimiter struct {
	limiters map[string]*ipLimiter
	mu       sync.Mutex

	limit rate.Limit
	burst int
	now   func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter 创建速率限制器
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether ip may open another connection now.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = now

	if !l.limiter.AllowN(now, 1) {
		log.Warn().Str("ip", ip).Msg("⚠️ connection rate exceeded")
		return false
	}
	return true
}

// Prune 删除超过 idle 未出现的 IP 记录，返回删除数量
func (rl *RateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for ip, l := range rl.limiters {
		if now.Sub(l.lastSeen) > idle {
			delete(rl.limiters, ip)
			removed++
		}
	}
	return removed
}

// --- 来源验证 ---

// OriginChecker 来源验证器
type OriginChecker struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewOriginChecker 创建来源验证器，列表为空或包含 "*" 时放行所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{
		allowedOrigins: make(map[string]bool),
		allowAll:       len(origins) == 0,
	}

	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowedOrigins[strings.ToLower(origin)] = true
	}

	return oc
}

// Check 检查来源是否允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// 终端客户端不带 Origin
		return true
	}

	return oc.allowedOrigins[strings.ToLower(origin)]
}

// --- IP 黑名单 ---

// IPFilter IP 过滤器
type IPFilter struct {
	blacklist map[string]bool
	mu        sync.RWMutex
}

// NewIPFilter 创建 IP 过滤器
func NewIPFilter(blocked []string) *IPFilter {
	f := &IPFilter{blacklist: make(map[string]bool)}
	for _, ip := range blocked {
		f.blacklist[strings.TrimSpace(ip)] = true
	}
	return f
}

// Block 加入黑名单
func (f *IPFilter) Block(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[ip] = true
}

// Unblock 从黑名单移除
func (f *IPFilter) Unblock(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blacklist, ip)
}

// IsAllowed 检查 IP 是否允许
func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.blacklist[ip]
}

// GetClientIP 获取客户端真实 IP
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- 消息速率限制 ---

// MessageRateLimiter 消息速率限制器（针对已连接的客户端）
type MessageRateLimiter struct {
	clients map[string]*messageRate
	mu      sync.Mutex

	limit rate.Limit
	burst int
	now   func() time.Time
}

type messageRate struct {
	limiter  *rate.Limiter
	warnings int
}

// NewMessageRateLimiter 创建消息速率限制器
func NewMessageRateLimiter(perSecond float64, burst int) *MessageRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &MessageRateLimiter{
		clients: make(map[string]*messageRate),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// AllowMessage consumes a token for clientID. When the bucket is empty the
// message is refused and the client's warning count grows.
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed bool, warnings int) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	r, ok := ml.clients[clientID]
	if !ok {
		r = &messageRate{limiter: rate.NewLimiter(ml.limit, ml.burst)}
		ml.clients[clientID] = r
	}

	if r.limiter.AllowN(ml.now(), 1) {
		return true, r.warnings
	}
	r.warnings++
	return false, r.warnings
}

// RemoveClient 移除客户端记录
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.clients, clientID)
}
