package auth

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const loginLimiterIdleTTL = 30 * time.Minute

type loginBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles login attempts per IP+username with a token bucket.
// Every attempt spends a token; a successful login drops the bucket.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*loginBucket
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLoginLimiter allows perMinute attempts a minute with the given burst.
// Call Stop to release the eviction goroutine.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}

	l := &LoginLimiter{
		buckets: make(map[string]*loginBucket),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		done:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.evictLoop(loginLimiterIdleTTL / 2)

	return l
}

// Allow reports whether another attempt for ip+username may proceed.
func (l *LoginLimiter) Allow(ip, username string) bool {
	key := limiterKey(ip, username)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &loginBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Reset forgets ip+username after a successful login.
func (l *LoginLimiter) Reset(ip, username string) {
	l.mu.Lock()
	delete(l.buckets, limiterKey(ip, username))
	l.mu.Unlock()
}

// Stop shuts down the eviction goroutine and waits for it to exit.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}

func (l *LoginLimiter) evictLoop(interval time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.evictIdle(now)
		case <-l.done:
			return
		}
	}
}

func (l *LoginLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > loginLimiterIdleTTL {
			delete(l.buckets, key)
		}
	}
}

func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func limiterKey(ip, username string) string {
	return ip + "|" + strings.ToLower(username)
}
