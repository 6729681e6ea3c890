package middleware

import (
	"fmt"
	"sync"
	"time"

	"capidrive/utils"

	"github.com/gin-gonic/gin"
)

// UploadCooldownLimiter enforces a per-user pause between uploads. A normal
// upload arms the short cooldown; an upload over the large threshold arms
// the long one. The pause starts when the upload completes, so slow
// transfers are not penalized for their own duration.
type UploadCooldownLimiter struct {
	mutex          sync.Mutex
	blockedUntil   map[string]time.Time
	cooldown       time.Duration
	largeCooldown  time.Duration
	largeThreshold int64
}

func NewUploadCooldownLimiter(cooldown, largeCooldown time.Duration, largeThresholdBytes int64) *UploadCooldownLimiter {
	l := &UploadCooldownLimiter{
		blockedUntil:   make(map[string]time.Time),
		cooldown:       cooldown,
		largeCooldown:  largeCooldown,
		largeThreshold: largeThresholdBytes,
	}
	go l.cleanup()
	return l
}

// Allow reports whether the client may upload now, and the remaining wait
// when it may not.
func (l *UploadCooldownLimiter) Allow(clientID string) (bool, time.Duration) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	until, exists := l.blockedUntil[clientID]
	if !exists {
		return true, 0
	}
	remaining := time.Until(until)
	if remaining <= 0 {
		delete(l.blockedUntil, clientID)
		return true, 0
	}
	return false, remaining
}

// Record arms the cooldown after a completed upload of the given size.
func (l *UploadCooldownLimiter) Record(clientID string, size int64) {
	cooldown := l.cooldown
	if l.largeThreshold > 0 && size >= l.largeThreshold {
		cooldown = l.largeCooldown
	}

	l.mutex.Lock()
	l.blockedUntil[clientID] = time.Now().Add(cooldown)
	l.mutex.Unlock()
}

func (l *UploadCooldownLimiter) cleanup() {
	for {
		time.Sleep(10 * time.Minute)

		l.mutex.Lock()
		now := time.Now()
		for key, until := range l.blockedUntil {
			if until.Before(now) {
				delete(l.blockedUntil, key)
			}
		}
		l.mutex.Unlock()
	}
}

// UploadCooldownMiddleware rejects uploads arriving inside the client's
// cooldown window and arms a new window after each upload that reached the
// handler.
func UploadCooldownMiddleware(limiter *UploadCooldownLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := getClientID(c)

		allowed, remaining := limiter.Allow(clientID)
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%.0f", remaining.Seconds()))
			utils.TooManyRequestsResponse(c, "Please wait before uploading again")
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() < 400 {
			limiter.Record(clientID, c.Request.ContentLength)
		}
	}
}

// getClientID returns client identifier for rate limiting
func getClientID(c *gin.Context) string {
	if userID, exists := utils.GetUserIDFromContext(c); exists {
		return fmt.Sprintf("user:%s", userID.Hex())
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}
