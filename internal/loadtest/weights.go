package loadtest

import (
	"fmt"
	"math/rand"
)

// weightedSwitch returns a function that outputs indexes at relative weights.
//
// Ex. weightedSwitch(2, 3, 5) returns a function that outputs:
//   - `0` 20% of the time
//   - `1` 30% of the time
//   - `2` 50% of the time
func weightedSwitch(weights ...int) (func(rndm *rand.Rand) int, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("a weighted switch must have at least 1 weight")
	}

	var sum int
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("weight %d must be positive, got %d", i, w)
		}
		sum += w
	}

	return func(rndm *rand.Rand) int {
		value := rndm.Intn(sum)

		threshold := 0
		for i := 0; i < len(weights); i++ {
			threshold += weights[i]
			if value < threshold {
				return i
			}
		}

		panic(fmt.Sprintf("random value generated was out of bounds: %d", value))
	}, nil
}
