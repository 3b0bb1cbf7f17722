package actuate

import "time"

// Cooldown enforces a minimum spacing between actions. An action is allowed
// when nothing has been marked yet or when strictly more than Window has
// elapsed since the last mark.
type Cooldown struct {
	Window time.Duration
	last   time.Time
	marked bool
}

// NewCooldown returns a Cooldown with the given window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{Window: window}
}

// Ready reports whether an action at now is outside the cooldown window.
func (c *Cooldown) Ready(now time.Time) bool {
	if !c.marked {
		return true
	}
	return now.Sub(c.last) > c.Window
}

// Mark records an action at now.
func (c *Cooldown) Mark(now time.Time) {
	c.last = now
	c.marked = true
}
