package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harun/taskpilot/internal/tracing"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
)

// EntryKind classifies a transcript line
type EntryKind string

const (
	EntryTask    EntryKind = "task"
	EntryAction  EntryKind = "action"
	EntryOutcome EntryKind = "outcome"
)

// Entry is one transcript line
type Entry struct {
	SessionID string                 `json:"session_id"`
	Kind      EntryKind              `json:"kind"`
	Type      string                 `json:"type,omitempty"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Info describes a stored transcript
type Info struct {
	ID       string
	Size     int64
	Modified time.Time
}

// Store keeps transcripts under dir
type Store struct {
	fs  afero.Fs
	dir string

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewStore creates the transcript directory if needed
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("sessions directory is required")
	}
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &Store{fs: fs, dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Dir returns the transcript directory
func (s *Store) Dir() string { return s.dir }

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("session ID cannot contain '..'")
	}
	if strings.ContainsAny(id, "/\\\x00") {
		return fmt.Errorf("session ID cannot contain path separators or null bytes")
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".jsonl")
}

func (s *Store) lock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Append writes entries to the end of the transcript for id
func (s *Store) Append(ctx context.Context, id string, entries ...Entry) (err error) {
	_, span := tracing.StartSpan(ctx, "session.append",
		attribute.String("session_id", id),
		attribute.Int("entries", len(entries)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if err := validateID(id); err != nil {
		return err
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	f, err := s.fs.OpenFile(s.path(id), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		e.SessionID = id
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return f.Sync()
}

// Load reads every entry of the transcript for id. Malformed lines are skipped.
func (s *Store) Load(id string) ([]Entry, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return entries, nil
}

// List returns stored transcripts, newest first
func (s *Store) List() ([]Info, error) {
	files, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var out []Info
	for _, fi := range files {
		if fi.IsDir() || filepath.Ext(fi.Name()) != ".jsonl" {
			continue
		}
		out = append(out, Info{
			ID:       strings.TrimSuffix(fi.Name(), ".jsonl"),
			Size:     fi.Size(),
			Modified: fi.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Modified.After(out[j].Modified)
	})
	return out, nil
}

// Prune removes transcripts last modified before now minus maxAge and
// returns how many were removed. maxAge <= 0 disables pruning.
func (s *Store) Prune(maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	infos, err := s.List()
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, info := range infos {
		if !info.Modified.Before(cutoff) {
			continue
		}
		if err := s.fs.Remove(s.path(info.ID)); err != nil {
			return removed, fmt.Errorf("failed to remove transcript %s: %w", info.ID, err)
		}
		removed++
	}
	return removed, nil
}
