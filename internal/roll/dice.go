package roll

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

const dieSides = 6

// Roller draws two independent six-sided dice. Drawing each die separately,
// rather than the total from a uniform [2,12], is what gives the triangular
// distribution the reward table is tuned for.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller builds a roller seeded from crypto/rand.
func NewRoller() (*Roller, error) {
	seed, err := newSeed()
	if err != nil {
		return nil, err
	}
	return NewRollerWithSeed(seed), nil
}

// NewRollerWithSeed builds a roller with a fixed seed, for deterministic tests.
func NewRollerWithSeed(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// Roll draws both dice and returns their faces and total.
func (r *Roller) Roll() (die1, die2, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	die1 = r.rng.Intn(dieSides) + 1
	die2 = r.rng.Intn(dieSides) + 1
	return die1, die2, die1 + die2
}

func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
