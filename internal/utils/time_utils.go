package utils

import (
	"sync"
	"time"
)

var (
	mu         sync.RWMutex
	displayLoc = time.UTC
)

// SetDisplayLocation sets the timezone used to render timestamps.
// An empty name selects UTC.
func SetDisplayLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	mu.Lock()
	displayLoc = loc
	mu.Unlock()
	return nil
}

// GetLocation returns the display *time.Location
func GetLocation() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return displayLoc
}

// FormatTimestamp renders t in the display location
func FormatTimestamp(t time.Time) string {
	return t.In(GetLocation()).Format("2006-01-02 15:04:05")
}
