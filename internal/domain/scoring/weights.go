package scoring

import (
	"fmt"
	"math"
)

// weightTolerance bounds rounding drift when checking that weights sum to 1.
const weightTolerance = 0.001

// Weights defines the contribution of each check toward the base score.
type Weights struct {
	Structure       float64
	HandleFormat    float64
	Description     float64
	FollowerCount   float64
	FollowerHandles float64
}

// DefaultWeights returns the production distribution. Follower count
// dominates; the text checks share the remainder.
func DefaultWeights() Weights {
	return Weights{
		Structure:       0.2,
		HandleFormat:    0.1,
		Description:     0.1,
		FollowerCount:   0.5,
		FollowerHandles: 0.1,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var total float64
	for _, v := range w.asList() {
		total += v
	}
	return total
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

// asList returns the weights in check order.
func (w Weights) asList() []float64 {
	return []float64{w.Structure, w.HandleFormat, w.Description, w.FollowerCount, w.FollowerHandles}
}
