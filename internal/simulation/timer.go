// internal/simulation/timer.go
package simulation

// DecisionTimer is the countdown of the decision phase, in whole
// seconds. It has no clock of its own; the owner calls Tick once per
// elapsed second.
type DecisionTimer struct {
	duration  int
	remaining int
	running   bool
	expired   bool
	onExpire  func()
}

// NewDecisionTimer returns a halted timer holding the full duration
func NewDecisionTimer(durationSeconds int, onExpire func()) *DecisionTimer {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	return &DecisionTimer{
		duration:  durationSeconds,
		remaining: durationSeconds,
		onExpire:  onExpire,
	}
}

// Start sets remaining to durationSeconds and begins counting
func (t *DecisionTimer) Start(durationSeconds int) {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	t.remaining = durationSeconds
	t.running = true
	t.expired = false
}

// Tick decrements by one second, floored at zero. Reaching zero halts
// the timer and calls onExpire once. Ticks on a halted timer are
// ignored. It reports whether the timer was running.
func (t *DecisionTimer) Tick() bool {
	if !t.running {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 && !t.expired {
		t.expired = true
		t.running = false
		if t.onExpire != nil {
			t.onExpire()
		}
	}
	return true
}

// Reset re-arms the full duration and halts
func (t *DecisionTimer) Reset() {
	t.remaining = t.duration
	t.running = false
	t.expired = false
}

// Stop halts without changing remaining
func (t *DecisionTimer) Stop() {
	t.running = false
}

func (t *DecisionTimer) Remaining() int { return t.remaining }
func (t *DecisionTimer) Duration() int  { return t.duration }
func (t *DecisionTimer) Running() bool  { return t.running }
func (t *DecisionTimer) Expired() bool  { return t.expired }
