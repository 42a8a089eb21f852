package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/ini.v1"

	"github.com/brensch/tetris/game"
	"github.com/brensch/tetris/rules"
)

// ErrMalformedSave wraps every failure to parse or validate a save file.
var ErrMalformedSave = errors.New("malformed save file")

// Save file sections.
const (
	SectionBoardImage  = "BOARD_IMAGE"
	SectionGame        = "TETRIS_GAME_STRUCT"
	SectionActivePiece = "ACTIVE_PIECE"
	SectionBoard       = "board"
	SectionActiveBoard = "active_board"
)

// gameSection is the scalar part of a State as it appears under
// [TETRIS_GAME_STRUCT].
type gameSection struct {
	GameOver                       bool           `ini:"game_over"`
	Score                          uint32         `ini:"score"`
	Level                          uint32         `ini:"level"`
	GravityTickRateUsec            uint32         `ini:"gravity_tick_rate_usec"`
	LastGravityTick                game.Timestamp `ini:"last_gravity_tick_usec"`
	LinesClearedSinceLastLevel     uint8          `ini:"lines_cleared_since_last_level"`
	BoardHighestOccupiedCell       int16          `ini:"board_highest_occupied_cell"`
	ActiveBoardHighestOccupiedCell int16          `ini:"active_board_highest_occupied_cell"`
}

type pieceSection struct {
	PType       uint8 `ini:"ptype"`
	LocRow      int16 `ini:"loc_row"`
	LocCol      int16 `ini:"loc_col"`
	Orientation uint8 `ini:"orientation"`
	Falling     bool  `ini:"falling"`
}

// optionalGameKeys may be absent from older saves; the value is the default.
var optionalGameKeys = map[string]string{
	"lines_cleared_since_last_level": "0",
}

// Save writes s in the sectioned key/value format. A pretty-printed image of
// the composite board is written first as comment lines; Load ignores it.
func Save(w io.Writer, s *game.State) error {
	if s == nil {
		return fmt.Errorf("save: nil state")
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "[%s]\n", SectionBoardImage)
	for _, line := range strings.Split(strings.TrimRight(FormatBoard(s.ActiveBoard), "\n"), "\n") {
		fmt.Fprintf(bw, "; %s\n", strings.TrimRight(line, " "))
	}
	bw.WriteString("\n")

	cfg := ini.Empty()
	sec, err := cfg.NewSection(SectionGame)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	gameKeys := [][2]string{
		{"game_over", boolString(s.GameOver)},
		{"score", strconv.FormatUint(uint64(s.Score), 10)},
		{"level", strconv.FormatUint(uint64(s.Level), 10)},
		{"gravity_tick_rate_usec", strconv.FormatUint(uint64(s.GravityIntervalUsec), 10)},
		{"last_gravity_tick_usec", fmt.Sprintf("%d,%d", s.LastGravityTick.Sec, s.LastGravityTick.Usec)},
		{"lines_cleared_since_last_level", strconv.Itoa(int(s.LinesSinceLevel))},
		{"board_highest_occupied_cell", strconv.Itoa(int(s.Board.HighestOccupiedRow))},
		{"active_board_highest_occupied_cell", strconv.Itoa(int(s.ActiveBoard.HighestOccupiedRow))},
	}
	if err := addKeys(sec, gameKeys); err != nil {
		return err
	}

	sec, err = cfg.NewSection(SectionActivePiece)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	p := s.ActivePiece
	if err := addKeys(sec, [][2]string{
		{"ptype", strconv.Itoa(int(p.Type))},
		{"loc_row", strconv.Itoa(int(p.Loc.Row))},
		{"loc_col", strconv.Itoa(int(p.Loc.Col))},
		{"orientation", strconv.Itoa(int(p.Orientation))},
		{"falling", boolString(p.Falling)},
	}); err != nil {
		return err
	}

	for _, b := range []struct {
		name  string
		board *game.Board
	}{{SectionBoard, &s.Board}, {SectionActiveBoard, &s.ActiveBoard}} {
		sec, err := cfg.NewSection(b.name)
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		rows := make([][2]string, 0, game.Rows)
		for r := range b.board.Cells {
			rows = append(rows, [2]string{rowKey(r), formatRow(b.board.Cells[r])})
		}
		if err := addKeys(sec, rows); err != nil {
			return err
		}
	}

	if _, err := cfg.WriteTo(bw); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return bw.Flush()
}

// SaveFile writes s to path via a temp file and rename, so a crash never
// leaves a half-written save behind.
func SaveFile(path string, s *game.State) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create save dir: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open tmp save: %w", err)
	}
	if err := Save(f, s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close tmp save: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename save: %w", err)
	}
	return nil
}

// Load parses a save into a new State. The state is only returned once it has
// been fully decoded and validated; every error wraps ErrMalformedSave.
// Unknown sections are ignored, unknown keys in known sections are not.
func Load(r io.Reader) (*game.State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrMalformedSave, err)
	}
	cfg, err := ini.LoadSources(ini.LoadOptions{}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSave, err)
	}

	var gs gameSection
	if err := decodeSection(cfg, SectionGame, optionalGameKeys, &gs); err != nil {
		return nil, err
	}
	var ps pieceSection
	if err := decodeSection(cfg, SectionActivePiece, nil, &ps); err != nil {
		return nil, err
	}

	s := game.NewState(gs.GravityTickRateUsec)
	s.GameOver = gs.GameOver
	s.Score = gs.Score
	s.Level = gs.Level
	s.LastGravityTick = gs.LastGravityTick
	s.LinesSinceLevel = gs.LinesClearedSinceLastLevel
	s.ActivePiece = game.Piece{
		Type:        game.PieceType(ps.PType),
		Loc:         game.Location{Row: ps.LocRow, Col: ps.LocCol},
		Orientation: ps.Orientation,
		Falling:     ps.Falling,
	}

	if err := loadBoard(cfg, SectionBoard, &s.Board); err != nil {
		return nil, err
	}
	s.Board.HighestOccupiedRow = gs.BoardHighestOccupiedCell

	if cfg.HasSection(SectionActiveBoard) {
		if err := loadBoard(cfg, SectionActiveBoard, &s.ActiveBoard); err != nil {
			return nil, err
		}
		s.ActiveBoard.HighestOccupiedRow = gs.ActiveBoardHighestOccupiedCell
	} else if s.ActivePiece.Type.Valid() && s.ActivePiece.Orientation < game.NumOrientations {
		rules.RenderActiveBoard(s)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSave, err)
	}
	return s, nil
}

// LoadFile reads and parses the save at path.
func LoadFile(path string) (*game.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// FormatBoard renders b as a grid with row and column indices, filled cells
// showing their piece number.
func FormatBoard(b game.Board) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Highest occupied cell: %d\n   ", b.HighestOccupiedRow)
	sb.WriteString("  ")
	for c := 0; c < game.Cols; c++ {
		fmt.Fprintf(&sb, "%-2d  ", c)
	}
	sb.WriteString("\n   ")
	sb.WriteString(strings.Repeat("----", game.Cols+1))
	sb.WriteString("\n")
	for r := range b.Cells {
		fmt.Fprintf(&sb, "%-3d| ", r)
		for _, cell := range b.Cells[r] {
			if cell >= 0 {
				fmt.Fprintf(&sb, "%-3d ", cell)
			} else {
				sb.WriteString("    ")
			}
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}

func addKeys(sec *ini.Section, kv [][2]string) error {
	for _, pair := range kv {
		if _, err := sec.NewKey(pair[0], pair[1]); err != nil {
			return fmt.Errorf("save [%s] %s: %w", sec.Name(), pair[0], err)
		}
	}
	return nil
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func rowKey(r int) string { return "row_" + strconv.Itoa(r) }

func formatRow(row [game.Cols]game.Cell) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, ",")
}

// decodeSection maps the keys of one section onto out. Every field of out
// must be present unless listed in optional with a default; a key out does
// not know is an error.
func decodeSection(cfg *ini.File, name string, optional map[string]string, out any) error {
	sec, err := cfg.GetSection(name)
	if err != nil {
		return fmt.Errorf("%w: missing [%s]", ErrMalformedSave, name)
	}
	kv := sec.KeysHash()
	for key, def := range optional {
		if _, ok := kv[key]; !ok {
			kv[key] = def
		}
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       timestampHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Metadata:         &md,
		TagName:          "ini",
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("%w: [%s]: %w", ErrMalformedSave, name, err)
	}
	if err := dec.Decode(kv); err != nil {
		return fmt.Errorf("%w: [%s]: %w", ErrMalformedSave, name, err)
	}
	if len(md.Unset) > 0 {
		return fmt.Errorf("%w: [%s] missing key %q", ErrMalformedSave, name, md.Unset[0])
	}
	return nil
}

var timestampType = reflect.TypeOf(game.Timestamp{})

// timestampHook decodes "sec,usec" (optionally wrapped in braces) into a
// game.Timestamp.
func timestampHook(from, to reflect.Type, data any) (any, error) {
	if to != timestampType || from.Kind() != reflect.String {
		return data, nil
	}
	return parseTimestamp(data.(string))
}

func parseTimestamp(v string) (game.Timestamp, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(strings.TrimPrefix(v, "{"), "}")
	secStr, usecStr, ok := strings.Cut(v, ",")
	if !ok {
		return game.Timestamp{}, fmt.Errorf("timestamp %q: want sec,usec", v)
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(secStr), 10, 64)
	if err != nil {
		return game.Timestamp{}, fmt.Errorf("timestamp seconds: %w", err)
	}
	usec, err := strconv.ParseInt(strings.TrimSpace(usecStr), 10, 64)
	if err != nil {
		return game.Timestamp{}, fmt.Errorf("timestamp microseconds: %w", err)
	}
	return game.Timestamp{Sec: sec, Usec: usec}, nil
}

// loadBoard fills b from row_0..row_N keys. Every row must be present with
// exactly Cols cells, each Empty or a piece type.
func loadBoard(cfg *ini.File, name string, b *game.Board) error {
	sec, err := cfg.GetSection(name)
	if err != nil {
		return fmt.Errorf("%w: missing [%s]", ErrMalformedSave, name)
	}
	kv := sec.KeysHash()
	for key := range kv {
		n, err := strconv.Atoi(strings.TrimPrefix(key, "row_"))
		if !strings.HasPrefix(key, "row_") || err != nil || n < 0 || n >= game.Rows {
			return fmt.Errorf("%w: [%s] unknown key %q", ErrMalformedSave, name, key)
		}
	}
	for r := 0; r < game.Rows; r++ {
		v, ok := kv[rowKey(r)]
		if !ok {
			return fmt.Errorf("%w: [%s] missing %s", ErrMalformedSave, name, rowKey(r))
		}
		v = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(v), "{"), "}")
		parts := strings.Split(v, ",")
		if len(parts) != game.Cols {
			return fmt.Errorf("%w: [%s] %s has %d cells, want %d", ErrMalformedSave, name, rowKey(r), len(parts), game.Cols)
		}
		for c, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("%w: [%s] %s col %d: %w", ErrMalformedSave, name, rowKey(r), c, err)
			}
			if n != int(game.Empty) && (n < 0 || n >= game.NumPieceTypes) {
				return fmt.Errorf("%w: [%s] %s col %d: cell %d out of range", ErrMalformedSave, name, rowKey(r), c, n)
			}
			b.Cells[r][c] = game.Cell(n)
		}
	}
	return nil
}
