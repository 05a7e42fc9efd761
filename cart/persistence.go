package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// DefaultFile is the cart location under the user's config directory.
func DefaultFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "food-storefront", "cart.json"), nil
}

// FilePersistence stores the cart as JSON. A missing file is an empty cart.
type FilePersistence struct {
	Path string
}

func (f FilePersistence) Load() ([]Line, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("cart: decode %s: %w", f.Path, err)
	}
	for _, l := range lines {
		if l.MenuItem.ID == "" || l.Quantity < 1 {
			return nil, fmt.Errorf("cart: invalid line in %s", f.Path)
		}
	}
	return lines, nil
}

// Save writes through a temporary file so a crash never leaves half a cart.
func (f FilePersistence) Save(lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

// MemoryPersistence keeps the cart in memory, mostly for tests.
type MemoryPersistence struct {
	mu    sync.Mutex
	lines []Line
	Err   error // returned by Load when set
	Saves int
}

func (m *MemoryPersistence) Load() ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.lines), nil
}

func (m *MemoryPersistence) Save(lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = slices.Clone(lines)
	m.Saves++
	return nil
}
