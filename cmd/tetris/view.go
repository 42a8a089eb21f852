package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/tetris/game"
)

// pieceColors is indexed by PieceType: S green, Z red, T magenta, L white,
// J blue, square yellow, I cyan.
var pieceColors = [game.NumPieceTypes]lipgloss.Color{"2", "1", "5", "7", "4", "3", "6"}

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("250"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

const cellText = "  "

func renderBoard(b game.Board) string {
	var sb strings.Builder
	for r := range b.Cells {
		for _, c := range b.Cells[r] {
			if c == game.Empty {
				sb.WriteString(cellText)
				continue
			}
			sb.WriteString(lipgloss.NewStyle().Background(pieceColors[c]).Render(cellText))
		}
		if r < game.Rows-1 {
			sb.WriteByte('\n')
		}
	}
	return borderStyle.Render(sb.String())
}

func (m model) renderInfo() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TETRIS"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Score  %d\n", m.eng.Score())
	fmt.Fprintf(&b, "Level  %d\n", m.eng.Level())
	fmt.Fprintf(&b, "Lines  %d\n", m.eng.LinesSinceLevel())
	fmt.Fprintf(&b, "Pieces %d\n", m.rec.Len())
	b.WriteString("\n")

	switch {
	case m.eng.GameOver():
		b.WriteString(warningStyle.Render("GAME OVER"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Final score %d\n", m.eng.Score())
		b.WriteString(helpStyle.Render("q to quit"))
		b.WriteString("\n")
	case m.paused:
		b.WriteString(warningStyle.Render("PAUSED"))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("arrows move/rotate\nspace pause  s save\nq quit"))
	return lipgloss.NewStyle().PaddingLeft(2).Render(b.String())
}

func (m model) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, renderBoard(m.eng.Snapshot()), m.renderInfo())
}
