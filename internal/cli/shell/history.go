// Package shell provides the interactive mode of the sessiondx CLI.
package shell

import (
	"bufio"
	"os"
	"path/filepath"
)

// History persists the values entered in the shell across runs.
type History struct {
	entries []string
	maxSize int
	file    string
}

// NewHistory creates a History backed by ~/.sessiondx/history.
func NewHistory() *History {
	homeDir, _ := os.UserHomeDir()
	return &History{
		maxSize: 1000,
		file:    filepath.Join(homeDir, ".sessiondx", "history"),
	}
}

// NewHistoryFile creates a History backed by an explicit file.
func NewHistoryFile(path string) *History {
	return &History{
		maxSize: 1000,
		file:    path,
	}
}

// Add appends an entry, evicting the oldest past the size cap.
func (h *History) Add(entry string) {
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[1:]
	}
}

// Get returns the entry at index, 0 being the most recent.
func (h *History) Get(index int) string {
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Load reads the history file. A missing file is not an error.
func (h *History) Load() error {
	file, err := os.Open(h.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		h.Add(scanner.Text())
	}
	return scanner.Err()
}

// Save writes the history file, creating its directory if needed.
func (h *History) Save() error {
	if err := os.MkdirAll(filepath.Dir(h.file), 0o700); err != nil {
		return err
	}

	file, err := os.Create(h.file)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, entry := range h.entries {
		if _, err := file.WriteString(entry + "\n"); err != nil {
			return err
		}
	}
	return nil
}
