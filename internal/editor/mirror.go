package editor

import (
	"encoding/json/v2"
	"fmt"
	"os"
	"path/filepath"
)

// MirrorFileName is the fixed name of the mirror inside the state dir.
// One mirror per state dir; a second session overwrites the first.
const MirrorFileName = "tree-editor.json"

// Mirror persists the form under a fixed file name on every change.
// It is write-only crash residue: nothing in the editor reads it back.
type Mirror struct {
	path string
}

// NewMirror creates a mirror rooted at stateDir.
func NewMirror(stateDir string) *Mirror {
	return &Mirror{path: filepath.Join(stateDir, MirrorFileName)}
}

// Path returns the mirror file location.
func (m *Mirror) Path() string {
	return m.path
}

// Write replaces the mirror with the given form. The write goes through
// a temp file and rename so a crash mid-write never truncates the
// previous state.
func (m *Mirror) Write(form Form) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	return nil
}
