package service

import (
	"fmt"
	"math/rand"
	"time"
)

// IDGenerator produces human-readable entity IDs: a prefix plus a random
// five-digit number, re-rolled until the candidate is absent from the
// caller's loaded ID set. Uniqueness holds only against that set at call
// time; two concurrent callers can still mint the same ID before either
// row commits.
type IDGenerator struct {
	intn func(n int) int
}

// NewIDGenerator creates a generator with its own seeded source.
func NewIDGenerator() *IDGenerator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &IDGenerator{intn: rng.Intn}
}

// NewIDGeneratorWithSource creates a generator drawing from intn, which
// must behave like rand.Intn. Used by tests to force collisions.
func NewIDGeneratorWithSource(intn func(n int) int) *IDGenerator {
	return &IDGenerator{intn: intn}
}

// Generate returns prefix + a number in [10000, 99999] not present in
// existing.
func (g *IDGenerator) Generate(prefix string, existing map[string]struct{}) string {
	for {
		candidate := fmt.Sprintf("%s%d", prefix, 10000+g.intn(90000))
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

// IDSet builds the existing-ID set Generate expects.
func IDSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}
