package stats

import (
	"fmt"
	"time"
)

// SessionWindow is a time-of-day bucket covering local hours [StartHour, EndHour).
type SessionWindow struct {
	Name      string `json:"name"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

// DefaultSessions are the four trading sessions used when none are configured.
var DefaultSessions = []SessionWindow{
	{Name: "Asian", StartHour: 0, EndHour: 8},
	{Name: "London", StartHour: 8, EndHour: 13},
	{Name: "New York", StartHour: 13, EndHour: 21},
	{Name: "Other", StartHour: 21, EndHour: 24},
}

// Config controls how trades are bucketed.
type Config struct {
	// Location is the zone entry dates are interpreted in. Timestamps
	// without an offset are read as wall-clock time in this zone;
	// timestamps with an offset are converted into it.
	Location *time.Location
	Sessions []SessionWindow
}

// DefaultConfig returns UTC with the default session windows.
func DefaultConfig() Config {
	sessions := make([]SessionWindow, len(DefaultSessions))
	copy(sessions, DefaultSessions)
	return Config{
		Location: time.UTC,
		Sessions: sessions,
	}
}

// Validate checks that the session windows partition the day in order.
func (c Config) Validate() error {
	if len(c.Sessions) == 0 {
		return fmt.Errorf("at least one session window is required")
	}
	seen := make(map[string]bool, len(c.Sessions))
	next := 0
	for i, s := range c.Sessions {
		if s.Name == "" {
			return fmt.Errorf("session %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("session %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.StartHour != next {
			return fmt.Errorf("session %q: starts at %d, expected %d", s.Name, s.StartHour, next)
		}
		if s.EndHour <= s.StartHour || s.EndHour > 24 {
			return fmt.Errorf("session %q: invalid end hour %d", s.Name, s.EndHour)
		}
		next = s.EndHour
	}
	if next != 24 {
		return fmt.Errorf("sessions end at %d, must cover the day up to 24", next)
	}
	return nil
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
