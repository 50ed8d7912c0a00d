package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

const tuiStateFileName = "tui_state.json"

// TUIState stores small, user-facing UI state so a relaunched editor can
// restore the previous screen. It lives inside the workspace dir, so state
// is naturally scoped per outline. Intentionally best-effort: callers
// tolerate missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	// Open records explicit expand/collapse choices by item id; ids not in
	// the map use the workspace's DefaultOpen config.
	Open map[string]bool `json:"open,omitempty"`

	SelectedID string `json:"selectedId,omitempty"`
}

func (s Store) tuiStatePath() string {
	return filepath.Join(s.Dir, tuiStateFileName)
}

func (s Store) LoadTUIState() (*TUIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &TUIState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.tuiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.tuiStatePath() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.tuiStatePath())
}
