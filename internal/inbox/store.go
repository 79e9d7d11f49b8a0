package inbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	inboxVersion  = 1
	inboxFileName = "inbox.json"
	appDirName    = "pcparts-relay"
)

type inboxFile struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

// Store reads and writes the inbox under ~/.local/state/pcparts-relay
// (respecting XDG_STATE_HOME).
type Store struct {
	dir string
}

// NewStore uses dir, or the default state directory when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &Store{dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, inboxFileName)
}

// Load returns the saved items. A missing file is an empty inbox.
func (s *Store) Load() ([]Item, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var f inboxFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing inbox: %w", err)
	}
	return f.Items, nil
}

// Save writes items with a temp-file-then-rename so a crash never leaves a
// truncated file behind.
func (s *Store) Save(items []Item) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating inbox dir: %w", err)
	}

	data, err := json.MarshalIndent(inboxFile{Version: inboxVersion, Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling inbox: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".inbox-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming inbox file: %w", err)
	}
	committed = true
	return nil
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDirName)
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
