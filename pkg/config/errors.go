package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the base error every failure of this package wraps.
var ErrConfiguration = errors.New("configuration error")

var (
	// ErrUnsupportedFileType is returned for an unknown file extension or format name.
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrConfiguration)

	// ErrUnsupportedConfiguration is returned when a document cannot be decoded
	// or its root is not a mapping.
	ErrUnsupportedConfiguration = fmt.Errorf("%w: unsupported configuration", ErrConfiguration)

	// ErrStructuralCollision is returned when a key equals a reserved accessor name.
	ErrStructuralCollision = fmt.Errorf("%w: structural collision", ErrConfiguration)

	// ErrInvalidOptions is returned when the options passed to Interpolate or
	// a loader fail validation.
	ErrInvalidOptions = fmt.Errorf("%w: invalid options", ErrConfiguration)
)

// CollisionError reports a key that shadows a reserved accessor name.
type CollisionError struct {
	// Path is the dotted path of the offending key.
	Path string
	// Name is the reserved name it collides with.
	Name string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("key %q collides with reserved name %q", e.Path, e.Name)
}

func (e *CollisionError) Unwrap() error {
	return ErrStructuralCollision
}
