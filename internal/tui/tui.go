package tui

import (
	"context"

	"coursetree-cli/internal/debug"
	"coursetree-cli/internal/model"
	"coursetree-cli/internal/session"
	"coursetree-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(s store.Store) error {
	sess, outline, err := session.Hydrate(context.Background(), s)
	if err != nil {
		return err
	}
	sess.Observe(func(action model.Action, st model.TreeState) {
		debug.Log("tui: committed %s (%d top-level items)", action.Name(), len(st.Data))
	})

	cfg, err := s.LoadConfig()
	if err != nil {
		cfg = store.DefaultConfig()
	}
	view, err := s.LoadTUIState()
	if err != nil {
		view = &store.TUIState{Version: 1}
	}

	applyColorProfilePreference()

	m := newAppModel(sess, s, outline, cfg, view)
	defer m.close()

	out, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	sess.Flush()
	if final, ok := out.(*appModel); ok {
		return final.saveViewState()
	}
	return nil
}
