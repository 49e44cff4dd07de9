package prefs

import (
	"errors"
	"fmt"

	"github.com/arloliu/cpref/codec"
)

var (
	// ErrNotAscending is returned when a row holds ids that are not strictly ascending.
	ErrNotAscending = errors.New("prefs: row ids are not strictly ascending")
	// ErrOutOfRange is returned when a user or item index exceeds the container dimensions.
	ErrOutOfRange = errors.New("prefs: index out of range")
	// ErrTransposeMismatch is returned when the user and item views do not describe the same relation.
	ErrTransposeMismatch = errors.New("prefs: user and item views disagree")
	// ErrInvalidSnapshot is returned for data that is not a readable snapshot.
	ErrInvalidSnapshot = errors.New("prefs: invalid snapshot")
	// ErrChecksumMismatch is returned when a snapshot payload fails its checksum.
	ErrChecksumMismatch = errors.New("prefs: snapshot checksum mismatch")
	// ErrMalformedLine is returned by the text reader for a line it cannot parse.
	ErrMalformedLine = errors.New("prefs: malformed line")
)

// View selects one of the two orientations of a container.
type View uint8

const (
	// UserView holds, per user, the ascending ids of preferred items.
	UserView View = iota
	// ItemView holds, per item, the ascending ids of users preferring it.
	ItemView
)

func (v View) String() string {
	switch v {
	case UserView:
		return "user"
	case ItemView:
		return "item"
	default:
		return "unknown"
	}
}

// RowError reports the row that made a build fail.
type RowError struct {
	View  View
	Row   uint32
	Codec codec.Descriptor
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("prefs: %s row %d (codec %s): %v", e.View, e.Row, e.Codec, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
