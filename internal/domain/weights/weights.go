// Package weights derives per-joint importance weights from a reference
// motion sequence, discounting joints the camera could not see reliably.
package weights

import (
	"gonum.org/v1/gonum/floats"

	"github.com/formlab/motionscore/internal/domain/motion"
)

// Default estimator configuration constants.
const (
	defaultVisibleThreshold = 0.5
	defaultCutoffRatio      = 0.4
)

// Source selects which sequence's visibility data gates joint weighting.
// The upstream product is undecided here, so the choice is explicit
// configuration rather than a silent default.
type Source string

// Recognized visibility sources.
const (
	SourceReference Source = "reference"
	SourceUser      Source = "user"
	SourceBoth      Source = "both"
)

// ParseSource maps a config string to a Source, defaulting to reference.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceReference, SourceUser, SourceBoth:
		return Source(s), nil
	case "":
		return SourceReference, nil
	default:
		return "", NewKind("weights.parse_source", ErrUnknownSource)
	}
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithVisibleThreshold sets the confidence at or above which a joint
// counts as visible in a frame. Values outside [0,1] are ignored and the
// default kept.
func WithVisibleThreshold(t float64) Option {
	return func(e *Estimator) {
		if t >= 0 && t <= 1 {
			e.visibleThreshold = t
		}
	}
}

// WithCutoffRatio sets the occlusion tolerance: a joint visible in fewer
// than (1 - ratio) of frames is excluded from weighting entirely.
// Values outside [0,1] are ignored and the default kept.
func WithCutoffRatio(r float64) Option {
	return func(e *Estimator) {
		if r >= 0 && r <= 1 {
			e.cutoffRatio = r
		}
	}
}

// Estimator computes a normalized per-joint weight vector. It is pure
// and stateless between calls; the same instance may be shared across
// concurrent requests.
type Estimator struct {
	visibleThreshold float64
	cutoffRatio      float64
}

// NewEstimator creates an Estimator with default thresholds.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		visibleThreshold: defaultVisibleThreshold,
		cutoffRatio:      defaultCutoffRatio,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns one non-negative weight per joint, summing to 1.
//
// Each joint accumulates the Euclidean distance it travels between
// consecutive frames where it was visible in both. Joints visible in
// fewer than (1 - cutoffRatio) of frames contribute nothing. When no
// joint moved at all (static reference, single frame, or everything
// occluded) the vector falls back to uniform 1/J.
func (e *Estimator) Weights(reference motion.Sequence, vis motion.Visibility) ([]float64, error) {
	if err := reference.Validate(); err != nil {
		return nil, err
	}
	numFrames := reference.Frames()
	numJoints := reference.Joints()
	if err := vis.Validate(numFrames, numJoints); err != nil {
		return nil, err
	}

	displacements := make([]float64, numJoints)
	for j := 0; j < numJoints; j++ {
		visibleCount := 0
		for f := 0; f < numFrames; f++ {
			if vis[f][j] >= e.visibleThreshold {
				visibleCount++
			}
		}
		ratio := float64(visibleCount) / float64(numFrames)
		if ratio < 1-e.cutoffRatio {
			// Joint was occluded too often to trust its motion signal.
			continue
		}

		sum := 0.0
		for f := 1; f < numFrames; f++ {
			if vis[f][j] < e.visibleThreshold || vis[f-1][j] < e.visibleThreshold {
				continue
			}
			sum += motion.Dist(reference[f-1][j], reference[f][j])
		}
		displacements[j] = sum
	}

	total := floats.Sum(displacements)
	if total == 0 {
		uniform := make([]float64, numJoints)
		for j := range uniform {
			uniform[j] = 1 / float64(numJoints)
		}
		return uniform, nil
	}
	floats.Scale(1/total, displacements)
	return displacements, nil
}

// Combine merges reference and user visibility according to the source.
// Either matrix may be nil, meaning fully visible. For SourceBoth the
// elementwise minimum gates weighting, so a joint must be seen in both
// captures to count.
func Combine(src Source, ref, user motion.Visibility, frames, joints int) motion.Visibility {
	pick := func(v motion.Visibility) motion.Visibility {
		if v == nil {
			return motion.FullVisibility(frames, joints)
		}
		return v
	}
	switch src {
	case SourceUser:
		return pick(user)
	case SourceBoth:
		r, u := pick(ref), pick(user)
		out := make(motion.Visibility, frames)
		for f := 0; f < frames; f++ {
			row := make([]float64, joints)
			for j := 0; j < joints; j++ {
				row[j] = min(r[f][j], u[f][j])
			}
			out[f] = row
		}
		return out
	default:
		return pick(ref)
	}
}
