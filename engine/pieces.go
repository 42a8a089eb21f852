package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brensch/tetris/game"
)

// PieceSource chooses the type of each newly spawned piece.
type PieceSource interface {
	Next() game.PieceType
}

// UniformSource picks every type with equal probability on each draw.
type UniformSource struct {
	rng *rand.Rand
}

func NewUniformSource(seed int64) *UniformSource {
	return &UniformSource{rng: rand.New(rand.NewSource(seed))}
}

func (u *UniformSource) Next() game.PieceType {
	return game.PieceType(u.rng.Intn(game.NumPieceTypes))
}

// BagSource deals a shuffled set of all seven types, refilling when empty.
// No type can be absent for more than twelve consecutive spawns.
type BagSource struct {
	rng *rand.Rand
	bag []game.PieceType
}

func NewBagSource(seed int64) *BagSource {
	return &BagSource{rng: rand.New(rand.NewSource(seed))}
}

func (b *BagSource) Next() game.PieceType {
	if len(b.bag) == 0 {
		b.refill()
	}
	t := b.bag[0]
	b.bag = b.bag[1:]
	return t
}

func (b *BagSource) refill() {
	bag := make([]game.PieceType, game.NumPieceTypes)
	for i := range bag {
		bag[i] = game.PieceType(i)
	}
	b.rng.Shuffle(len(bag), func(i, j int) {
		bag[i], bag[j] = bag[j], bag[i]
	})
	b.bag = bag
}

// NewPieceSource builds the source named by cfg.Randomizer. A zero seed is
// replaced with the current time.
func NewPieceSource(cfg Config) (PieceSource, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	switch cfg.Randomizer {
	case RandomizerUniform, "":
		return NewUniformSource(seed), nil
	case RandomizerBag:
		return NewBagSource(seed), nil
	}
	return nil, fmt.Errorf("unknown randomizer %q", cfg.Randomizer)
}
