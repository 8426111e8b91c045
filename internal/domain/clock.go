package domain

import "github.com/jonboulle/clockwork"

// clock is the time source ParseFeed samples "now" from. Tests freeze it via
// SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used to evaluate active alerts. Pass nil to
// reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
