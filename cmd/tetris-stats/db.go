package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// openArchive opens an in-memory DuckDB with a landings view over every
// session parquet file under dir. Files still in tmp/ are excluded.
func openArchive(dir string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA threads=4"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set duckdb threads: %w", err)
	}

	found, err := hasSessionFiles(dir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if !found {
		_, err := db.Exec(`CREATE OR REPLACE VIEW landings AS
			SELECT * FROM (
				SELECT
					NULL::VARCHAR AS session_id,
					NULL::INTEGER AS seq,
					NULL::VARCHAR AS piece,
					NULL::INTEGER AS "row",
					NULL::INTEGER AS col,
					NULL::INTEGER AS orientation,
					NULL::INTEGER AS rows_cleared,
					NULL::BIGINT AS score,
					NULL::INTEGER AS level,
					NULL::INTEGER AS lines_since_level,
					NULL::INTEGER AS highest_occupied_row,
					NULL::BIGINT AS at_usec,
					NULL::BOOLEAN AS game_over,
					NULL::VARCHAR AS filename
			) WHERE 1=0`)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	// Only the part of filename below dir is checked for tmp/, so an archive
	// that itself lives under /tmp is still read.
	root := filepath.Clean(dir)
	glob := filepath.Join(root, "**", "*.parquet")
	sqlText := `CREATE OR REPLACE VIEW landings AS
		SELECT * FROM read_parquet('` + escapeSQLString(glob) + `', filename=true, union_by_name=true)
		WHERE NOT contains(substr(filename, ` + strconv.Itoa(len(root)+1) + `), '/tmp/')`
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create landings view: %w", err)
	}
	return db, nil
}

// hasSessionFiles reports whether read_parquet would match anything under
// dir, walking subdirectories the way the ** glob does and skipping tmp/.
// A missing dir is an empty archive.
func hasSessionFiles(dir string) (bool, error) {
	found := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == "tmp" && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".parquet") {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("scan archive %s: %w", dir, err)
	}
	return found, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
