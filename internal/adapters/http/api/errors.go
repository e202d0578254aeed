package api

import (
	"errors"
	"fmt"

	repository "github.com/formlab/motionscore/internal/adapters/repository"
	"github.com/formlab/motionscore/internal/domain/motion"
	"github.com/formlab/motionscore/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// NewKind tags a sentinel kind with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags err with both the operation and a sentinel kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap tags err with the failing operation.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// isValidation reports whether err is a request-side defect: malformed
// motion data, a dimension mismatch, or an unmapped difficulty level.
func isValidation(err error) bool {
	return errors.Is(err, motion.ErrDimensionMismatch) ||
		errors.Is(err, motion.ErrEmptySequence) ||
		errors.Is(err, motion.ErrEmptyFrame) ||
		errors.Is(err, motion.ErrConfidenceRange) ||
		errors.Is(err, types.ErrUnknownDifficulty) ||
		errors.Is(err, repository.ErrInvalidLimit)
}

// isNotFound reports whether err means the user has no recorded score.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
