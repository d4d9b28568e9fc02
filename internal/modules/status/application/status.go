package application

import (
	"fmt"
	"time"
)

// StatusInteractor reports bot health: gateway latency and uptime.
type StatusInteractor struct {
	startedAt time.Time
	now       func() time.Time
}

// NewStatusInteractor creates a StatusInteractor anchored at the current time.
func NewStatusInteractor() *StatusInteractor {
	return &StatusInteractor{
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// StatusResult is the outcome of a status query.
type StatusResult struct {
	Message string
}

// Execute builds the status message from the measured gateway latency.
func (s *StatusInteractor) Execute(latency time.Duration) StatusResult {
	uptime := s.now().Sub(s.startedAt).Round(time.Second)
	return StatusResult{
		Message: fmt.Sprintf("Pong! Latency: %dms, up for %s.",
			latency.Milliseconds(), formatUptime(uptime)),
	}
}

// formatUptime renders a duration as the largest two units, e.g. "2d3h" or
// "5m12s".
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
