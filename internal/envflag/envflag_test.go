package envflag

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSet(env map[string]string) *Set {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return New(fs, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
}

func TestSet_Precedence(t *testing.T) {
	s := newSet(map[string]string{
		"TETRIS_SAVE":  "from-env.ini",
		"TETRIS_SEED":  "42",
		"TETRIS_DEBUG": "true",
		"TETRIS_TICK":  "10ms",
		"TETRIS_LOG":   "",
	})
	save := s.String("save", "TETRIS_SAVE", "gamestate.ini", "save file")
	seed := s.Int("seed", "TETRIS_SEED", 0, "seed")
	debug := s.Bool("debug", "TETRIS_DEBUG", false, "debug")
	tick := s.Duration("tick", "TETRIS_TICK", 25*time.Millisecond, "tick")
	logPath := s.String("log", "TETRIS_LOG", "game.log", "log")

	require.NoError(t, s.Parse([]string{"-seed", "7"}))
	assert.Equal(t, "from-env.ini", *save)
	assert.Equal(t, 7, *seed, "command line wins")
	assert.True(t, *debug)
	assert.Equal(t, 10*time.Millisecond, *tick)
	assert.Equal(t, "game.log", *logPath, "empty env keeps the default")
}

func TestSet_MalformedEnv(t *testing.T) {
	s := newSet(map[string]string{"TETRIS_SEED": "abc", "TETRIS_TICK": "soon"})
	seed := s.Int("seed", "TETRIS_SEED", 3, "seed")
	s.Duration("tick", "TETRIS_TICK", time.Second, "tick")

	err := s.Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `TETRIS_SEED="abc"`)
	assert.Contains(t, err.Error(), `TETRIS_TICK="soon"`)
	assert.Equal(t, 3, *seed)
}

func TestSet_UsageNamesEnv(t *testing.T) {
	s := newSet(nil)
	s.String("save", "TETRIS_SAVE", "gamestate.ini", "Save file")
	f := s.fs.Lookup("save")
	require.NotNil(t, f)
	assert.Equal(t, "Save file (env TETRIS_SAVE)", f.Usage)
	assert.Equal(t, "gamestate.ini", f.DefValue)
}
