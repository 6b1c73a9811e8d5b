package paintmatch

import "fmt"

// Reference is an immutable target pair the player's surfaces are scored
// against. Both surfaces must have the player surfaces' resolution.
type Reference struct {
	Name   string
	Color  *ColorSurface
	Height *HeightSurface
}

// Resolution returns the edge length of the reference color surface, or 0
// when it is missing.
func (r Reference) Resolution() int {
	if r.Color == nil {
		return 0
	}
	return r.Color.Size()
}

// Validate reports ErrInvalidConfiguration when a surface is missing or not
// resolution x resolution.
func (r Reference) Validate(resolution int) error {
	if r.Color == nil || r.Height == nil {
		return fmt.Errorf("paintmatch: reference %q: missing surface: %w", r.Name, ErrInvalidConfiguration)
	}
	if r.Color.Size() != resolution || r.Height.Size() != resolution {
		return fmt.Errorf("paintmatch: reference %q: size %d/%d, want %d: %w",
			r.Name, r.Color.Size(), r.Height.Size(), resolution, ErrInvalidConfiguration)
	}
	return nil
}
