package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/brensch/tetris/game"
	"github.com/brensch/tetris/store"
)

func main() {
	savePath := flag.String("save", "", "Save file to print")
	archivePath := flag.String("archive", "", "Session parquet file to print landing by landing")
	flag.Parse()

	if *savePath == "" && *archivePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *savePath != "" {
		s, err := store.LoadFile(*savePath)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *savePath, err)
		}
		printState(s)
	}

	if *archivePath != "" {
		rows, err := store.ReadSessionParquet(*archivePath)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *archivePath, err)
		}
		printLandings(rows)
	}
}

func printState(s *game.State) {
	fmt.Print(store.FormatBoard(s.ActiveBoard))
	fmt.Println()
	fmt.Printf("  Score:     %d\n", s.Score)
	fmt.Printf("  Level:     %d\n", s.Level)
	fmt.Printf("  Lines:     %d since last level\n", s.LinesSinceLevel)
	fmt.Printf("  Gravity:   %dus\n", s.GravityIntervalUsec)
	fmt.Printf("  Piece:     %s at (%d,%d) orientation %d falling=%t\n",
		s.ActivePiece.Type, s.ActivePiece.Loc.Row, s.ActivePiece.Loc.Col, s.ActivePiece.Orientation, s.ActivePiece.Falling)
	fmt.Printf("  Game over: %t\n", s.GameOver)
}

func printLandings(rows []store.LandingRow) {
	if len(rows) == 0 {
		fmt.Println("no landings")
		return
	}
	fmt.Printf("Session %s, %d landings\n", rows[0].SessionID, len(rows))
	for _, r := range rows {
		cleared := ""
		if r.RowsCleared > 0 {
			cleared = fmt.Sprintf(" cleared %d", r.RowsCleared)
		}
		end := ""
		if r.GameOver {
			end = " GAME OVER"
		}
		fmt.Printf("  %4d | %-6s (%2d,%2d) o%d | score %6d level %2d%s%s\n",
			r.Seq, r.Piece, r.Row, r.Col, r.Orientation, r.Score, r.Level, cleared, end)
	}
}
