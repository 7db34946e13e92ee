// Package file stores events as a single JSON document on disk.
//
// The document has the shape {"events": [...]}. Hand-edited files may contain
// comments and trailing commas; they are stripped on load.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/cyp0633/recurcal/recurrence"
	"github.com/cyp0633/recurcal/storage"
)

type document struct {
	Events []recurrence.Event `json:"events"`
}

// Store implements storage.Storage backed by one JSON file
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var _ storage.Storage = (*Store)(nil)

// New creates a file store at path. The file is created on first Save.
// A nil logger disables logging.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads and normalizes the stored events. A missing file is an empty list.
func (s *Store) Load(ctx context.Context) ([]recurrence.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, &storage.Error{Type: storage.ErrUnavailable, Message: "load canceled", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("event file missing, starting empty", "path", s.path)
		return []recurrence.Event{}, nil
	}
	if err != nil {
		return nil, &storage.Error{Type: storage.ErrUnavailable, Message: "read events", Err: err}
	}

	var doc document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, &storage.Error{Type: storage.ErrInvalidInput, Message: fmt.Sprintf("parse %s", s.path), Err: err}
	}
	if doc.Events == nil {
		doc.Events = []recurrence.Event{}
	}

	s.logger.Debug("loaded events", "path", s.path, "count", len(doc.Events))
	return storage.NormalizeAll(doc.Events), nil
}

// Save writes events atomically: a temp file in the same directory is renamed over the target.
func (s *Store) Save(ctx context.Context, events []recurrence.Event) error {
	if err := ctx.Err(); err != nil {
		return &storage.Error{Type: storage.ErrUnavailable, Message: "save canceled", Err: err}
	}
	if events == nil {
		events = []recurrence.Event{}
	}

	data, err := json.MarshalIndent(document{Events: events}, "", "  ")
	if err != nil {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "encode events", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &storage.Error{Type: storage.ErrUnavailable, Message: "create directory", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".events-*.json")
	if err != nil {
		return &storage.Error{Type: storage.ErrUnavailable, Message: "create temp file", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return &storage.Error{Type: storage.ErrUnavailable, Message: "write events", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &storage.Error{Type: storage.ErrUnavailable, Message: "close temp file", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &storage.Error{Type: storage.ErrUnavailable, Message: "replace event file", Err: err}
	}

	s.logger.Debug("saved events", "path", s.path, "count", len(events))
	return nil
}
