package testposes

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/google/uuid"

	"github.com/formlab/motionscore/internal/domain/motion"
)

// Constants for synthetic motion generation.
const (
	randomFloatDivisor = 1000000
	// noiseScale perturbs the user sequence away from the reference so
	// scores land below, but near, 1.0.
	noiseScale = 0.05
	// dropoutChance is the probability a joint reads as occluded in a
	// given frame of the synthetic visibility matrix.
	dropoutChance = 0.1
)

// Difficulty levels cycled across generated submissions.
var difficulties = []string{"easy", "medium", "hard"}

// Submission is one generated scoring request.
type Submission struct {
	UserID          string            `json:"user_id"`
	ReferencePoses  motion.Sequence   `json:"reference_poses"`
	UserPoses       motion.Sequence   `json:"user_poses"`
	Visibility      motion.Visibility `json:"visibility_matrix"`
	DifficultyLevel string            `json:"difficulty_level"`
}

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateSubmissions builds count submissions for distinct users.
func generateSubmissions(config *Config, stats *Stats) []Submission {
	subs := make([]Submission, config.Submissions)
	for i := range subs {
		subs[i] = generateSingleSubmission(i, config.Frames)
	}
	stats.Generated = len(subs)
	return subs
}

// generateSingleSubmission fabricates an exercise repetition: arms swing
// through a sine arc while the lower body stays planted, which gives the
// estimator a clear high-weight joint group.
func generateSingleSubmission(index, frames int) Submission {
	reference := make(motion.Sequence, frames)
	user := make(motion.Sequence, frames)
	vis := make(motion.Visibility, frames)

	phase := randomFloat() * 2 * math.Pi
	for f := 0; f < frames; f++ {
		t := float64(f) / float64(frames)
		refFrame := make(motion.Frame, motion.NumJoints)
		userFrame := make(motion.Frame, motion.NumJoints)
		visRow := make([]float64, motion.NumJoints)

		for j := 0; j < motion.NumJoints; j++ {
			// Joints 0-5 are the upper body; give them the motion.
			base := [3]float64{float64(j) * 0.1, 1.0 - float64(j)*0.05, 0}
			if j < 6 {
				base[1] += 0.3 * math.Sin(2*math.Pi*t+phase)
				base[0] += 0.1 * math.Cos(2*math.Pi*t+phase)
			}
			refFrame[j] = base

			noisy := base
			noisy[0] += (randomFloat() - 0.5) * noiseScale
			noisy[1] += (randomFloat() - 0.5) * noiseScale
			noisy[2] += (randomFloat() - 0.5) * noiseScale
			userFrame[j] = noisy

			if randomFloat() < dropoutChance {
				visRow[j] = randomFloat() * 0.4
			} else {
				visRow[j] = 0.6 + randomFloat()*0.4
			}
		}
		reference[f] = refFrame
		user[f] = userFrame
		vis[f] = visRow
	}

	return Submission{
		UserID:          uuid.New().String(),
		ReferencePoses:  reference,
		UserPoses:       user,
		Visibility:      vis,
		DifficultyLevel: difficulties[index%len(difficulties)],
	}
}
