package entity

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user cancels at a conflict prompt.
// Nothing has been written when it is returned.
var ErrCancelled = errors.New("generation cancelled")

// MissingRegistryError reports a registry document that does not exist yet.
type MissingRegistryError struct {
	Registry string
	Path     string
}

func (e *MissingRegistryError) Error() string {
	return fmt.Sprintf("%s registry %s does not exist (run `taogen init` to create it)", e.Registry, e.Path)
}
