// Package leaktest checks that code under test does not leave goroutines running.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// SettleTimeout is how long Check waits for goroutines to exit
const SettleTimeout = 2 * time.Second

// Checker records a goroutine baseline and compares against it later
type Checker struct {
	t        testing.TB
	baseline int
}

// New records the current goroutine count
func New(t testing.TB) *Checker {
	t.Helper()
	runtime.Gosched()
	return &Checker{t: t, baseline: runtime.NumGoroutine()}
}

// Check fails the test if, after SettleTimeout, more than tolerance goroutines
// above the baseline are still alive
func (c *Checker) Check(tolerance int) {
	c.t.Helper()
	limit := c.baseline + tolerance
	deadline := time.Now().Add(SettleTimeout)
	for {
		n := runtime.NumGoroutine()
		if n <= limit {
			return
		}
		if time.Now().After(deadline) {
			c.t.Errorf("goroutine leak: baseline=%d now=%d tolerance=%d", c.baseline, n, tolerance)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Run calls fn and fails if it leaves any goroutine behind
func Run(t testing.TB, fn func()) {
	t.Helper()
	c := New(t)
	fn()
	c.Check(0)
}
