package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// SessionLog records which sessions have been archived and their final
// scores, in an append-only file.
//
// Format: <session_id>\t<final_score>\n
//
// Loading skips blank or malformed lines, so a crash mid-append costs at most
// the final entry. Adding an id that is already present is a no-op.
type SessionLog struct {
	mu       sync.RWMutex
	path     string
	file     *os.File
	sessions map[string]uint32
	order    []string
}

func OpenSessionLog(path string) (*SessionLog, error) {
	if path == "" {
		return nil, fmt.Errorf("session log path is required")
	}

	l := &SessionLog{path: path, sessions: make(map[string]uint32)}

	if f, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			id, scoreStr, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "\t")
			if !ok || id == "" {
				continue
			}
			score, err := strconv.ParseUint(strings.TrimSpace(scoreStr), 10, 32)
			if err != nil {
				continue
			}
			l.remember(id, uint32(score))
		}
		_ = f.Close()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	l.file = file
	return l, nil
}

func (l *SessionLog) remember(id string, score uint32) {
	if _, ok := l.sessions[id]; ok {
		return
	}
	l.sessions[id] = score
	l.order = append(l.order, id)
}

func (l *SessionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *SessionLog) Has(sessionID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.sessions[sessionID]
	return ok
}

func (l *SessionLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}

// Best returns the highest recorded score and its session. Ties go to the
// earlier session.
func (l *SessionLog) Best() (sessionID string, score uint32, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, id := range l.order {
		if s := l.sessions[id]; !ok || s > score {
			sessionID, score, ok = id, s, true
		}
	}
	return sessionID, score, ok
}

// Add appends a session and syncs the file.
func (l *SessionLog) Add(sessionID string, finalScore uint32) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is empty")
	}
	if strings.ContainsAny(sessionID, "\t\n") {
		return fmt.Errorf("sessionID %q contains a separator", sessionID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sessions[sessionID]; ok {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("session log is closed")
	}

	line := sessionID + "\t" + strconv.FormatUint(uint64(finalScore), 10) + "\n"
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("append session log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync session log: %w", err)
	}

	l.remember(sessionID, finalScore)
	return nil
}
