package types

import "errors"

// Error kinds per spec.md §7. Caller-visible failures are exactly
// {RegistryConflict, BlockedError, OriginalFault, NotFound, ConfigError};
// all others are handled internally and never propagate to a caller.
var (
	// ErrConfig marks an invalid environment or path configuration.
	ErrConfig = errors.New("mystic: config error")
	// ErrRegistryConflict marks an attempt to re-wrap without replace=true.
	ErrRegistryConflict = errors.New("mystic: registry conflict")
	// ErrNotFound marks an unknown identity on unhijack/inspect.
	ErrNotFound = errors.New("mystic: not found")
	// ErrBlocked is the sentinel wrapped by BlockedError.
	ErrBlocked = errors.New("mystic: blocked")
)

// BlockedError is raised by the Block strategy when raise_error is set.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string { return "mystic: blocked: " + e.Reason }
func (e *BlockedError) Unwrap() error { return ErrBlocked }
func (e *BlockedError) Kind() string  { return "BlockedError" }

// OriginalFault wraps an error raised by the wrapped callable itself, so
// that callers and metrics code can distinguish it from strategy/registry
// failures without inspecting the message.
type OriginalFault struct {
	Err error
}

func (e *OriginalFault) Error() string { return e.Err.Error() }
func (e *OriginalFault) Unwrap() error { return e.Err }
func (e *OriginalFault) Kind() string  { return "OriginalFault" }

// RegistryConflictError reports that an identity is already wrapped and
// replace=true was not given.
type RegistryConflictError struct {
	Identity FunctionIdentity
}

func (e *RegistryConflictError) Error() string {
	return "mystic: " + e.Identity.String() + " is already hijacked; pass replace=true to rewrap"
}
func (e *RegistryConflictError) Unwrap() error { return ErrRegistryConflict }
func (e *RegistryConflictError) Kind() string  { return "RegistryConflict" }

// NotFoundError reports an unknown FunctionIdentity.
type NotFoundError struct {
	Identity FunctionIdentity
}

func (e *NotFoundError) Error() string {
	return "mystic: no registration for " + e.Identity.String()
}
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
func (e *NotFoundError) Kind() string  { return "NotFound" }

// ConfigError reports invalid configuration, fatal at init.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "mystic: config: " + e.Field + ": " + e.Reason
}
func (e *ConfigError) Unwrap() error { return ErrConfig }
func (e *ConfigError) Kind() string  { return "ConfigError" }
