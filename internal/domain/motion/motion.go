// Package motion contains the pose-sequence types exchanged between the
// pose-detection producer and the scoring engine.
package motion

import "math"

// Canonical joint ordering emitted by the pose producer. Index into a
// Frame matches this list. The engine itself works with whatever J the
// data carries; twelve is what the producer sends.
var JointNames = [NumJoints]string{
	"LEFT_SHOULDER",
	"RIGHT_SHOULDER",
	"LEFT_ELBOW",
	"RIGHT_ELBOW",
	"LEFT_WRIST",
	"RIGHT_WRIST",
	"LEFT_HIP",
	"RIGHT_HIP",
	"LEFT_KNEE",
	"RIGHT_KNEE",
	"LEFT_ANKLE",
	"RIGHT_ANKLE",
}

// NumJoints is the canonical joint count (J) for producer output.
const NumJoints = 12

// Frame holds one sampled instant: one [x, y, z] position per joint.
type Frame [][3]float64

// Sequence is an ordered run of frames for one exercise repetition.
// Joint identity and ordering are fixed for the lifetime of a request.
type Sequence []Frame

// Visibility is an FxJ matrix of per-frame, per-joint observation
// confidences in [0, 1], paired with a Sequence by index.
type Visibility [][]float64

// Validate checks that the sequence has at least one frame and that
// every frame carries the same, non-zero joint count.
func (s Sequence) Validate() error {
	if len(s) == 0 {
		return NewKind("motion.validate", ErrEmptySequence)
	}
	j := len(s[0])
	if j == 0 {
		return NewKind("motion.validate", ErrEmptyFrame)
	}
	for _, f := range s {
		if len(f) != j {
			return NewKind("motion.validate", ErrDimensionMismatch)
		}
	}
	return nil
}

// Frames returns F, the number of frames.
func (s Sequence) Frames() int { return len(s) }

// Joints returns J, the per-frame joint count (0 for an empty sequence).
func (s Sequence) Joints() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// SameDims checks that two sequences agree on both frame count and joint
// count. The engine never resamples; callers align lengths first.
func SameDims(a, b Sequence) error {
	if a.Frames() != b.Frames() || a.Joints() != b.Joints() {
		return NewKind("motion.same_dims", ErrDimensionMismatch)
	}
	return nil
}

// Validate checks the matrix is exactly frames x joints with every
// confidence inside [0, 1]. Out-of-range values are rejected, not
// clamped.
func (v Visibility) Validate(frames, joints int) error {
	if len(v) != frames {
		return NewKind("motion.visibility", ErrDimensionMismatch)
	}
	for _, row := range v {
		if len(row) != joints {
			return NewKind("motion.visibility", ErrDimensionMismatch)
		}
		for _, c := range row {
			if c < 0 || c > 1 || math.IsNaN(c) {
				return NewKind("motion.visibility", ErrConfidenceRange)
			}
		}
	}
	return nil
}

// FullVisibility builds an all-ones matrix, the documented default when
// a request omits visibility data.
func FullVisibility(frames, joints int) Visibility {
	v := make(Visibility, frames)
	for f := range v {
		row := make([]float64, joints)
		for j := range row {
			row[j] = 1.0
		}
		v[f] = row
	}
	return v
}

// Dist returns the Euclidean distance between two joint positions.
func Dist(a, b [3]float64) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	dz := b[2] - a[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
