package util

import (
	"math/rand"
	"time"
)

// Runs fn and returns the seconds it took, along with its error. Uses the monotonic clock, so
// wall clock steps during fn do not skew the result.
func Measure(fn func() error) (float64, error) {
	start := time.Now()
	err := fn()
	return time.Since(start).Seconds(), err
}

const lowercase = "abcdefghijklmnopqrstuvwxyz"

// Returns a string of 'length' lowercase ascii letters drawn uniformly from rng
func RandomLowercaseString(rng *rand.Rand, length int) string {
	if length <= 0 {
		return ""
	}
	var s = make([]byte, length)
	for i := 0; i < length; i++ {
		s[i] = lowercase[rng.Intn(len(lowercase))]
	}
	return string(s)
}

// Returns a rng seeded with seed, or with the current time when seed is 0
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
