// Package clock provides a tamper-resistant time source. It fetches a
// reference timestamp from an HTTP Date header and applies the device-vs-
// reference offset to every subsequent local read, so winding the system
// clock cannot farm daily resets or dodge vow penalties.
package clock

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	syncTimeout  = 3 * time.Second
	syncCooldown = 30 * time.Second
	dateLayout   = "2006-01-02"
)

// DefaultEndpoints are fast CDN connectivity checks that return a Date
// header; the first success wins.
var DefaultEndpoints = []string{
	"https://www.google.com/generate_204",
	"https://1.1.1.1/cdn-cgi/trace",
	"https://www.cloudflare.com/cdn-cgi/trace",
}

// Service owns the shared offset state behind a mutex. Zero offset (never
// synced) degrades to plain local time.
type Service struct {
	mu          sync.Mutex
	offset      time.Duration // local minus reference; positive = device ahead
	synced      bool
	lastAttempt time.Time

	endpoints []string
	client    *http.Client
	nowFn     func() time.Time
}

func NewService(endpoints []string) *Service {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &Service{
		endpoints: endpoints,
		client:    &http.Client{Timeout: syncTimeout},
		nowFn:     time.Now,
	}
}

// Now returns the reference-adjusted current time.
func (s *Service) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowFn().Add(-s.offset)
}

// Today returns the reference-adjusted calendar date in UTC.
func (s *Service) Today() string {
	return s.Now().UTC().Format(dateLayout)
}

func (s *Service) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Offset returns the current device-vs-reference offset.
func (s *Service) Offset() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Sync refreshes the offset from the first reachable endpoint. Repeated
// calls inside the cooldown window are no-ops once a sync has succeeded.
// Failure is non-fatal: the service keeps serving local time.
func (s *Service) Sync(ctx context.Context) bool {
	s.mu.Lock()
	if s.synced && s.nowFn().Sub(s.lastAttempt) < syncCooldown {
		s.mu.Unlock()
		return true
	}
	s.lastAttempt = s.nowFn()
	s.mu.Unlock()

	for _, endpoint := range s.endpoints {
		offset, err := s.probe(ctx, endpoint)
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.offset = offset
		s.synced = true
		s.mu.Unlock()
		log.Debug().Str("endpoint", endpoint).Dur("offset", offset).Msg("clock synced")
		return true
	}
	log.Warn().Msg("clock sync failed on all endpoints, using local time")
	return false
}

// ForceSync bypasses the cooldown.
func (s *Service) ForceSync(ctx context.Context) bool {
	s.mu.Lock()
	s.lastAttempt = time.Time{}
	s.synced = false
	s.mu.Unlock()
	return s.Sync(ctx)
}

func (s *Service) probe(ctx context.Context, endpoint string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return 0, err
	}
	start := s.nowFn()
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	end := s.nowFn()

	ref, err := http.ParseTime(resp.Header.Get("Date"))
	if err != nil {
		return 0, err
	}
	// Split the round trip to approximate the reference time at response.
	latency := end.Sub(start) / 2
	return end.Sub(ref.Add(latency)), nil
}
