package service

import "errors"

var (
	// ErrInvalidTimezone indicates a timezone name that is not a valid IANA identifier.
	ErrInvalidTimezone = errors.New("invalid timezone")
	// ErrInvalidRange indicates a malformed or inverted time range.
	ErrInvalidRange = errors.New("invalid time range")
	// ErrNotFound indicates the slot, booking or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner indicates the caller does not own the resource.
	ErrNotOwner = errors.New("not owner")
	// ErrSlotUnavailable indicates the slot is already booked or in the past.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrSlotBooked indicates a booked slot cannot be closed directly.
	ErrSlotBooked = errors.New("slot is booked")
	// ErrQuotaExceeded indicates the student has no lesson credit left.
	ErrQuotaExceeded = errors.New("lesson quota exceeded")
)
