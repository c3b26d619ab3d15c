package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/dto/response"
	"golang.org/x/time/rate"
)

// RequestBudget is a per-user allowance for one class of requests. Each user
// gets a separate bucket per budget, so spending one never drains another.
type RequestBudget struct {
	Name   string
	Limit  int
	Window time.Duration
}

func (b RequestBudget) rate() rate.Limit {
	if b.Limit <= 0 || b.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(b.Limit) / b.Window.Seconds())
}

// BillCreateBudget caps bill creation. Every accepted create consumes a bill
// number from the monthly sequence.
func BillCreateBudget(perMinute int) RequestBudget {
	return RequestBudget{Name: "bill-create", Limit: perMinute, Window: time.Minute}
}

type budgetKey struct {
	budget string
	userID string
}

type budgetBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// BudgetLimiter holds the token buckets of every budget for every user.
type BudgetLimiter struct {
	mu      sync.Mutex
	buckets map[budgetKey]*budgetBucket
	idleTTL time.Duration
	now     func() time.Time
}

func NewBudgetLimiter(idleTTL time.Duration) *BudgetLimiter {
	return &BudgetLimiter{
		buckets: make(map[budgetKey]*budgetBucket),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Run drops idle buckets every interval until ctx is done.
func (l *BudgetLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Sweep removes buckets unused for longer than the idle TTL and reports how
// many were dropped.
func (l *BudgetLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	dropped := 0
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
			dropped++
		}
	}
	return dropped
}

// reserve takes one token from the user's bucket. A zero wait means the
// request may proceed; otherwise the token is handed back and wait is how
// long the caller should back off.
func (l *BudgetLimiter) reserve(b RequestBudget, userID string) (remaining int, wait time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := budgetKey{budget: b.Name, userID: userID}
	bucket, ok := l.buckets[k]
	if !ok {
		bucket = &budgetBucket{limiter: rate.NewLimiter(b.rate(), b.Limit)}
		l.buckets[k] = bucket
	}
	bucket.lastSeen = now

	r := bucket.limiter.ReserveN(now, 1)
	if !r.OK() {
		return 0, b.Window
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return 0, d
	}
	return int(bucket.limiter.TokensAt(now)), 0
}

// Limit enforces b for the authenticated user. Requests without a user are
// passed through; AuthMiddleware has already rejected them on protected routes.
func (l *BudgetLimiter) Limit(b RequestBudget) gin.HandlerFunc {
	limit := strconv.Itoa(b.Limit)
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" || b.rate() == rate.Inf {
			c.Next()
			return
		}

		remaining, wait := l.reserve(b, userID)
		c.Header("X-RateLimit-Scope", b.Name)
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			response.TooManyRequests(c, "Too many requests. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Stats reports the number of live buckets per budget.
func (l *BudgetLimiter) Stats() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int)
	for k := range l.buckets {
		out[k.budget]++
	}
	return out
}
