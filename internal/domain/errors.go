package domain

import "errors"

var (
	// ErrCatalogEmpty is returned when no compounds are available to draw from.
	ErrCatalogEmpty = errors.New("compound catalog is empty")
	// ErrUnknownFormula indicates a guess that does not resolve to a catalog compound.
	ErrUnknownFormula = errors.New("unknown formula")
	// ErrInvalidState is returned when a finished session is asked to play on, or an
	// unfinished one is asked for its summary.
	ErrInvalidState = errors.New("invalid session state")
	// ErrSessionNotFound is returned when a game session does not exist.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrInvalidCompound marks an ingested record missing required fields.
	ErrInvalidCompound = errors.New("invalid compound record")
	// ErrPlayerRequired indicates a score or log operation without a player ID.
	ErrPlayerRequired = errors.New("player id required")
	// ErrLogNotFound indicates a session log entry that does not exist.
	ErrLogNotFound = errors.New("session log not found")
)
