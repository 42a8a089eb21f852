package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/tetris/game"
)

func TestBagSource_DealsEachTypeOncePerBag(t *testing.T) {
	src := NewBagSource(42)
	for bag := 0; bag < 5; bag++ {
		seen := map[game.PieceType]int{}
		for i := 0; i < game.NumPieceTypes; i++ {
			seen[src.Next()]++
		}
		require.Len(t, seen, game.NumPieceTypes, "bag %d", bag)
		for pt, n := range seen {
			assert.Equal(t, 1, n, "bag %d dealt %s %d times", bag, pt, n)
		}
	}
}

func TestUniformSource_ReachesEveryType(t *testing.T) {
	src := NewUniformSource(7)
	seen := map[game.PieceType]bool{}
	for i := 0; i < 1000; i++ {
		pt := src.Next()
		require.True(t, pt.Valid(), "draw %d gave %d", i, pt)
		seen[pt] = true
	}
	assert.Len(t, seen, game.NumPieceTypes)
}

func TestPieceSources_SeedIsDeterministic(t *testing.T) {
	for _, r := range []Randomizer{RandomizerUniform, RandomizerBag} {
		cfg := DefaultConfig
		cfg.Randomizer = r
		cfg.Seed = 99

		a, err := NewPieceSource(cfg)
		require.NoError(t, err)
		b, err := NewPieceSource(cfg)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			require.Equal(t, a.Next(), b.Next(), "%s draw %d", r, i)
		}
	}

	cfg := DefaultConfig
	cfg.Randomizer = "weighted"
	_, err := NewPieceSource(cfg)
	assert.Error(t, err)
}

func TestConfig_SpeedCurve(t *testing.T) {
	require.NoError(t, DefaultConfig.Validate())
	curve := DefaultConfig.SpeedCurve()
	assert.Equal(t, uint32(100_000), curve.StepUsec)
	assert.Equal(t, uint32(200_000), curve.FloorUsec)
}
