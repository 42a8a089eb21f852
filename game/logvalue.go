package game

import "log/slog"

// LogValue renders l as {"row":..,"col":..}.
func (l Location) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("row", int(l.Row)),
		slog.Int("col", int(l.Col)),
	)
}

// LogValue renders p with its type name, anchor and orientation so engine
// events carry the whole piece as one structured attribute.
func (p Piece) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", p.Type.String()),
		slog.Any("at", p.Loc),
		slog.Int("orientation", int(p.Orientation)),
		slog.Bool("falling", p.Falling),
	)
}
