package reader

import "errors"

var (
	// ErrNotReady is returned by playback commands before Init succeeds.
	ErrNotReady = errors.New("reader is not initialized")
	// ErrEnded is returned by Play once reading finished; Reset first.
	ErrEnded = errors.New("reading has ended")
	// ErrSeekOutOfRange is returned for a seek outside [0, number of units).
	ErrSeekOutOfRange = errors.New("seek index out of range")
	// ErrInvalidSetting wraps validation failures from the setters.
	ErrInvalidSetting = errors.New("invalid setting")
)
