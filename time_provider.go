package k8sagent

import (
	"context"
	"sync"
	"time"
)

// Clock provides time-related functionality for the loop. It allows injecting a custom time
// source in tests so backoff waits do not actually block.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d, or until ctx is done. It returns ctx.Err() when interrupted.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the standard Clock using the system clock.
type SystemClock struct{}

// NewSystemClock creates a new SystemClock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep waits for d using a timer so an abandoned request stops waiting.
func (c *SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MockClock is a Clock that never blocks. Sleep advances the fixed time and records the
// requested duration. Useful for testing backoff behavior.
type MockClock struct {
	mu        sync.Mutex
	fixedTime time.Time
	sleeps    []time.Duration
}

// NewMockClock creates a MockClock starting at the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{fixedTime: t}
}

// SetTime updates the time returned by Now().
func (m *MockClock) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixedTime = t
}

// Now returns the mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fixedTime
}

// Sleep records d and advances the mock time by it. It still honors a done context.
func (m *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeps = append(m.sleeps, d)
	m.fixedTime = m.fixedTime.Add(d)
	return nil
}

// Sleeps returns every duration passed to Sleep, in order.
func (m *MockClock) Sleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}

// Compile-time checks that both clocks implement Clock.
var (
	_ Clock = (*SystemClock)(nil)
	_ Clock = (*MockClock)(nil)
)
