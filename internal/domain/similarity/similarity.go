// Package similarity scores how closely a user's motion sequence tracks
// a reference sequence, as a weighted cosine similarity.
package similarity

import (
	"gonum.org/v1/gonum/floats"

	"github.com/formlab/motionscore/internal/domain/motion"
)

// defaultEpsilon guards the denominator against degenerate (near-zero
// magnitude) sequences. The small bias it adds for tiny inputs is part
// of the score's contract; historical scores were produced with it.
const defaultEpsilon = 1e-8

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithEpsilon overrides the denominator guard. Non-positive values are
// ignored and the default kept.
func WithEpsilon(eps float64) Option {
	return func(s *Scorer) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}

// Scorer computes weighted cosine similarity between two sequences of
// identical shape. Pure and stateless; safe for concurrent use.
type Scorer struct {
	epsilon float64
}

// NewScorer creates a Scorer with the default epsilon guard.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{epsilon: defaultEpsilon}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the weighted cosine similarity over all (frame, joint,
// axis) triples. Each joint's scalar weight is applied to all three of
// its axes, so weighting scales whole 3D displacement vectors rather
// than individual coordinates. The result is nominally in [-1, 1] and
// in [0, 1] for realistic motion data.
//
// Both sequences must have the same frame and joint counts and the
// weight vector one entry per joint; anything else fails with
// ErrDimensionMismatch before any computation.
func (s *Scorer) Score(reference, user motion.Sequence, jointWeights []float64) (float64, error) {
	if err := reference.Validate(); err != nil {
		return 0, err
	}
	if err := user.Validate(); err != nil {
		return 0, err
	}
	if err := motion.SameDims(reference, user); err != nil {
		return 0, err
	}
	if len(jointWeights) != reference.Joints() {
		return 0, motion.NewKind("similarity.score", motion.ErrDimensionMismatch)
	}

	weightedRef := flattenWeighted(reference, jointWeights)
	weightedUser := flattenWeighted(user, jointWeights)

	dot := floats.Dot(weightedRef, weightedUser)
	normRef := floats.Norm(weightedRef, 2)
	normUser := floats.Norm(weightedUser, 2)

	return dot / (normRef*normUser + s.epsilon), nil
}

// flattenWeighted lays out weight[j] * coordinate for every (frame,
// joint, axis) triple in frame-major order.
func flattenWeighted(seq motion.Sequence, jointWeights []float64) []float64 {
	out := make([]float64, 0, seq.Frames()*seq.Joints()*3)
	for _, frame := range seq {
		for j, p := range frame {
			w := jointWeights[j]
			out = append(out, w*p[0], w*p[1], w*p[2])
		}
	}
	return out
}
