package server

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/StreamRealm_Go/internal/logger"
)

// ipWindow counts events for one IP within a fixed window
type ipWindow struct {
	count int
	start time.Time
}

// SuspiciousActivityDetector counts requests and failed auth attempts per IP
// over fixed windows. Idle IPs age out of bounded LRU caches.
type SuspiciousActivityDetector struct {
	mu         sync.Mutex
	window     time.Duration
	failedAuth *expirable.LRU[string, ipWindow]
	requests   *expirable.LRU[string, ipWindow]
	now        func() time.Time
}

func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	return &SuspiciousActivityDetector{
		window:     DetectorWindow,
		failedAuth: expirable.NewLRU[string, ipWindow](DetectorMaxTrackedIPs, nil, DetectorWindow),
		requests:   expirable.NewLRU[string, ipWindow](DetectorMaxTrackedIPs, nil, DetectorWindow),
		now:        time.Now,
	}
}

// bump increments ip's counter in cache, starting a new window when the old one has passed.
// Caller must hold the mutex.
func (s *SuspiciousActivityDetector) bump(cache *expirable.LRU[string, ipWindow], ip string) int {
	now := s.now()
	w, ok := cache.Get(ip)
	if !ok || now.Sub(w.start) > s.window {
		w = ipWindow{start: now}
	}
	w.count++
	cache.Add(ip, w)
	return w.count
}

// RecordFailedAuth records a failed authentication attempt
func (s *SuspiciousActivityDetector) RecordFailedAuth(ip string) {
	s.mu.Lock()
	count := s.bump(s.failedAuth, ip)
	s.mu.Unlock()

	if count >= FailedAuthAlertThreshold {
		logger.Warn(SecurityAlertFailedAuth, "ip", ip, "count", count)
	}
}

// RecordRequest counts a request and reports false once ip is over the limit
func (s *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	s.mu.Lock()
	count := s.bump(s.requests, ip)
	s.mu.Unlock()

	if count <= RequestRateLimit {
		return true
	}
	if count%RequestRateLogEvery == 0 {
		logger.Warn(SecurityAlertHighRate, "ip", ip, "count_in_window", count)
	}
	return false
}
