// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Limiter is a fixed-window counter keyed by an arbitrary string (client IP,
// normalized email). It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New allows limit hits per key within each duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining is the number of hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// Run sweeps every 2x the window duration until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	t := time.NewTicker(2 * l.duration)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

// Guard protects the login and contact forms. Login attempts are counted
// per client IP and per account email; contact submissions per client IP.
type Guard struct {
	loginIP    *Limiter
	loginEmail *Limiter
	contactIP  *Limiter
}

// Limits configures a Guard. Zero values take the defaults.
type Limits struct {
	LoginPerIP       int
	LoginPerEmail    int
	ContactPerIP     int
	LoginWindow      time.Duration
	LoginEmailWindow time.Duration
	ContactWindow    time.Duration
}

// NewGuard builds a Guard: 10 logins per IP per minute, 5 per email per
// 5 minutes, 5 contact submissions per IP per 10 minutes by default.
func NewGuard(l Limits) *Guard {
	orInt := func(v, d int) int {
		if v > 0 {
			return v
		}
		return d
	}
	orDur := func(v, d time.Duration) time.Duration {
		if v > 0 {
			return v
		}
		return d
	}
	return &Guard{
		loginIP:    New(orInt(l.LoginPerIP, 10), orDur(l.LoginWindow, time.Minute)),
		loginEmail: New(orInt(l.LoginPerEmail, 5), orDur(l.LoginEmailWindow, 5*time.Minute)),
		contactIP:  New(orInt(l.ContactPerIP, 5), orDur(l.ContactWindow, 10*time.Minute)),
	}
}

// Login reports whether a login attempt may proceed. When it may not, the
// returned message is safe to show the user.
func (g *Guard) Login(ip, email string) (bool, string) {
	if !g.loginIP.Allow(ip) {
		return false, "Too many sign-in attempts. Please wait a minute and try again."
	}
	if key := emailKey(email); key != "" && !g.loginEmail.Allow(key) {
		return false, "Too many sign-in attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// LoginSucceeded clears the per-email counter.
func (g *Guard) LoginSucceeded(email string) {
	if key := emailKey(email); key != "" {
		g.loginEmail.Reset(key)
	}
}

// Contact reports whether a contact submission from ip may proceed.
func (g *Guard) Contact(ip string) (bool, string) {
	if !g.contactIP.Allow(ip) {
		return false, "You have sent several messages recently. Please try again later."
	}
	return true, ""
}

// Run sweeps all limiters until ctx is done.
func (g *Guard) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, l := range []*Limiter{g.loginIP, g.loginEmail, g.contactIP} {
		wg.Add(1)
		go func(l *Limiter) {
			defer wg.Done()
			l.Run(ctx)
		}(l)
	}
	wg.Wait()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
