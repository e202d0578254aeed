package weights

import (
	"errors"
	"fmt"
)

// Sentinel kinds for weighting errors.
var (
	ErrUnknownSource = errors.New("unknown visibility source")
)

// NewKind tags a sentinel kind with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
