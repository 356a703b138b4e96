package domain

import "errors"

// Sentinel errors shared across the core and its adapters.
var (
	// ErrNotFound indicates a missing record in any store.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateProvider indicates a registration under a name that is
	// already taken.
	ErrDuplicateProvider = errors.New("provider name already registered")

	// ErrProviderNotFound indicates routing to a provider that is not
	// currently registered.
	ErrProviderNotFound = errors.New("provider not registered")

	// ErrIndexInProgress indicates a rejected re-entrant index build.
	ErrIndexInProgress = errors.New("index build already in progress")

	// ErrUnknownAction indicates an execution verb the dispatcher does
	// not understand.
	ErrUnknownAction = errors.New("unknown action")

	// ErrProviderTimeout indicates a provider exceeded its search
	// deadline and was treated as failed.
	ErrProviderTimeout = errors.New("provider search timed out")

	// ErrPluginInvalid indicates a plugin directory whose manifest or
	// module cannot be loaded.
	ErrPluginInvalid = errors.New("invalid plugin")
)
