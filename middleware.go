package main

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jamjam-trek/providers"
	"jamjam-trek/providers/trekapi"
)

const (
	traceHeader   = "X-Trace-Id"
	sessionKey    = "session"
	traceIDKey    = "trace_id"
	unauthorized  = "Authentication required. Please log in again."
	tooManyReview = "Too many reviews submitted. Please try again later."
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// traceIDMiddleware übernimmt oder erzeugt eine Trace-ID pro Anfrage.
func traceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(traceHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(traceIDKey, id)
		c.Header(traceHeader, id)
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func requestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/health" {
			return
		}
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("trace_id", c.GetString(traceIDKey)),
		)
	}
}

// bearerToken liest das Token aus dem Authorization-Header.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// sessionAuthMiddleware verlangt ein Bearer-Token und legt es als Session ab.
func sessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorized})
			return
		}
		c.Set(sessionKey, providers.Session{Token: token})
		c.Next()
	}
}

// clientFor bindet die Session der Anfrage an den Client.
func clientFor(c *gin.Context, api *trekapi.Client) *trekapi.Client {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(providers.Session); ok {
			return api.WithSession(s)
		}
	}
	if token := bearerToken(c); token != "" {
		return api.WithSession(providers.Session{Token: token})
	}
	return api
}

// ipRateLimiter hält einen Token-Bucket pro Client-IP.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// newIPRateLimiter erlaubt perMinute Anfragen pro Minute und IP; perMinute <= 0 schaltet ab.
func newIPRateLimiter(perMinute, burst int) *ipRateLimiter {
	l := &ipRateLimiter{limiters: make(map[string]*rate.Limiter), limit: rate.Inf, burst: burst}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if l.burst < 1 {
		l.burst = 1
	}
	return l
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func rateLimitMiddleware(l *ipRateLimiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			log.Warn("Rate limit exceeded", zap.String("ip", c.ClientIP()), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": tooManyReview})
			return
		}
		c.Next()
	}
}
