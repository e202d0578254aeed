package motion

import (
	"errors"
	"fmt"
)

// Sentinel kinds for motion data errors.
var (
	ErrEmptySequence     = errors.New("empty motion sequence")
	ErrEmptyFrame        = errors.New("frame has no joints")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrConfidenceRange   = errors.New("visibility confidence outside [0,1]")
	ErrInvalidStride     = errors.New("invalid downsample stride")
	ErrInvalidLength     = errors.New("invalid resample length")
)

// NewKind tags a sentinel kind with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
