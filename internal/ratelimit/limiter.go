package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config holds rate limiter settings.
type Config struct {
	// Max is the number of requests admitted per window.
	Max int
	// Window is the fixed window length.
	Window time.Duration
	// SweepInterval is how often expired windows are evicted.
	SweepInterval time.Duration
}

// DefaultConfig returns the standard limiter settings.
func DefaultConfig() Config {
	return Config{
		Max:           100,
		Window:        60 * time.Second,
		SweepInterval: 5 * time.Minute,
	}
}

// Admission is the outcome of an admission attempt.
type Admission struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type window struct {
	count int
	start time.Time
}

// Limiter is a fixed-window per-client rate limiter. A client's first
// request after its window expired starts a fresh window, so a burst
// straddling the boundary can see up to twice Max requests in Window
// wall time. That approximation is acceptable for abuse control here.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	cfg     Config
	now     func() time.Time
}

// NewLimiter creates a limiter with the given settings.
func NewLimiter(cfg Config) *Limiter {
	if cfg.Max <= 0 {
		cfg.Max = DefaultConfig().Max
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	return &Limiter{
		clients: make(map[string]*window),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Admit records a request from the client and reports whether it is
// admitted. The request is counted even when rejected.
func (l *Limiter) Admit(client string) Admission {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[client]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		w = &window{start: now}
		l.clients[client] = w
	}

	w.count++
	resetAt := w.start.Add(l.cfg.Window)
	remaining := l.cfg.Max - w.count
	if remaining < 0 {
		remaining = 0
	}

	if w.count > l.cfg.Max {
		return Admission{
			Allowed:    false,
			Limit:      l.cfg.Max,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}
	}

	return Admission{
		Allowed:   true,
		Limit:     l.cfg.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// Sweep evicts windows that have expired. Returns the number evicted.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	evicted := 0
	for client, w := range l.clients {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.clients, client)
			evicted++
		}
	}
	return evicted
}

// Run sweeps periodically until the context is cancelled.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.SweepInterval)
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

// Tracked returns the number of clients currently tracked.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
