// Package history keeps a linear undo/redo stack of full tree snapshots.
package history

import (
	"bytes"
	"errors"
)

var (
	// ErrUnderflow is returned by Undo at the oldest snapshot.
	ErrUnderflow = errors.New("nothing to undo")
	// ErrOverflow is returned by Redo at the newest snapshot.
	ErrOverflow = errors.New("nothing to redo")
)

// Snapshotter is the part of the tree the manager needs.
type Snapshotter interface {
	Marshal() ([]byte, error)
	RestoreJSON([]byte) error
}

// Manager is a stack of snapshots with a cursor. Entries past the cursor are
// redo states; Save discards them.
type Manager struct {
	src     Snapshotter
	limit   int
	entries [][]byte
	cursor  int
}

// New captures the initial snapshot of src. limit caps the stack (0 means
// unlimited); when exceeded the oldest entries are dropped.
func New(src Snapshotter, limit int) (*Manager, error) {
	m := &Manager{src: src, limit: limit, cursor: -1}
	if err := m.Save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Save truncates redo states and pushes the current snapshot.
func (m *Manager) Save() error {
	b, err := m.src.Marshal()
	if err != nil {
		return err
	}
	m.entries = append(m.entries[:m.cursor+1], b)
	if m.limit > 0 && len(m.entries) > m.limit {
		drop := len(m.entries) - m.limit
		m.entries = append([][]byte(nil), m.entries[drop:]...)
	}
	m.cursor = len(m.entries) - 1
	return nil
}

// Undo restores the previous snapshot.
func (m *Manager) Undo() error {
	if !m.CanUndo() {
		return ErrUnderflow
	}
	if err := m.src.RestoreJSON(m.entries[m.cursor-1]); err != nil {
		return err
	}
	m.cursor--
	return nil
}

// Redo restores the next snapshot.
func (m *Manager) Redo() error {
	if !m.CanRedo() {
		return ErrOverflow
	}
	if err := m.src.RestoreJSON(m.entries[m.cursor+1]); err != nil {
		return err
	}
	m.cursor++
	return nil
}

func (m *Manager) CanUndo() bool { return m.cursor > 0 }
func (m *Manager) CanRedo() bool { return m.cursor < len(m.entries)-1 }

// Len is the number of stored snapshots, the initial one included.
func (m *Manager) Len() int { return len(m.entries) }

// Cursor is the index of the snapshot matching the current tree.
func (m *Manager) Cursor() int { return m.cursor }

// Current returns a copy of the snapshot at the cursor.
func (m *Manager) Current() []byte {
	return bytes.Clone(m.entries[m.cursor])
}
