package gencache

import (
	"errors"
	"fmt"
)

var (
	// ErrNilEntity is returned when a nil entity is passed to Add, Update or Delete.
	ErrNilEntity = errors.New("gencache: entity is nil")

	// ErrNilArgument is returned when a required argument is nil or empty.
	ErrNilArgument = errors.New("gencache: required argument is nil")

	// ErrTicketKind is returned when a Ticket is saved through a Save method
	// of a different shape than the lookup that produced it.
	ErrTicketKind = errors.New("gencache: ticket does not belong to this operation")

	// ErrNoPartition is returned by InvalidatePartition when no partition is configured.
	ErrNoPartition = errors.New("gencache: no partition configured")
)

// FingerprintError reports criteria, options or key values that could not be
// rendered canonically. The strategy never returns it from lookups; it is
// passed to Hooks.FingerprintError and the lookup degrades to a miss.
type FingerprintError struct {
	Op  string
	Err error
}

func (e *FingerprintError) Error() string {
	return fmt.Sprintf("gencache: fingerprint %s: %v", e.Op, e.Err)
}

func (e *FingerprintError) Unwrap() error { return e.Err }

// ConfigError reports an invalid Options or Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gencache: invalid %s: %s", e.Field, e.Reason)
}
