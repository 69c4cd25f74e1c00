// Package timeutil is the single place where UTC and local wall time meet.
// Everything persisted is UTC; local time exists only at the API boundary.
package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownZone is returned when a timezone name is not a valid IANA
// identifier.
var ErrUnknownZone = errors.New("unknown timezone")

// LoadZone resolves an IANA zone name. Callers must not fall back to a
// default zone on failure when storing data, only when rendering it.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, ErrUnknownZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	return loc, nil
}

// ZoneOrDefault resolves name, falling back to the configured default zone.
// Display-only: never use this on a write path.
func ZoneOrDefault(name, fallback string) *time.Location {
	if loc, err := LoadZone(name); err == nil {
		return loc
	}
	loc, err := LoadZone(fallback)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Localize reinterprets the wall-clock fields of t as a time in loc.
// Used when parsing naive local-time input paired with a zone name.
func Localize(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// ToUTC converts an instant to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// ToLocal converts a UTC instant to the given zone.
func ToLocal(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}
