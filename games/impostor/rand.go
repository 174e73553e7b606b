/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Rand is the random source used for role assignment and identity draws.
type Rand interface {
	IntN(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.rng.IntN(n)
}

// NewRand returns a source safe to share between rooms. A zero seed is
// replaced with one read from crypto/rand.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		var b [8]byte
		if _, err := crand.Read(b[:]); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		seed = binary.LittleEndian.Uint64(b[:])
	}

	return &lockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
