package middleware

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

const RateLimitReply = "Не так быстро 🙂"

// RateLimiter throttles updates per Telegram user
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu     sync.Mutex
	limits map[int64]*rate.Limiter
}

// NewRateLimiter allows perSecond updates per user with the given burst
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:  rate.Limit(perSecond),
		burst:  burst,
		limits: make(map[int64]*rate.Limiter),
	}
}

// getLimiter gets or creates a limiter for the given user
func (rl *RateLimiter) getLimiter(userID int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[userID]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limits[userID] = limiter
	return limiter
}

// Allow checks if an update from the user may be processed now
func (rl *RateLimiter) Allow(userID int64) bool {
	return rl.getLimiter(userID).Allow()
}

// Forget drops limiters of users that went quiet
func (rl *RateLimiter) Forget(userID int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limits, userID)
}

// Middleware drops updates above the limit
func (rl *RateLimiter) Middleware(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || rl.Allow(sender.ID) {
				return next(c)
			}

			logger.Debug("Rate limited update", zap.Int64("user_id", sender.ID))
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: RateLimitReply})
			}
			return nil
		}
	}
}
