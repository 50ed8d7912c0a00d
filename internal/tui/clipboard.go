package tui

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"coursetree-cli/internal/debug"
)

// clipboardCandidates returns the copy commands to try for the current
// platform, in preference order.
func clipboardCandidates() [][]string {
	switch runtime.GOOS {
	case "darwin":
		return [][]string{{"pbcopy"}}
	case "windows":
		return [][]string{
			{"cmd", "/c", "clip"},
			{"powershell", "-NoProfile", "-Command", "Set-Clipboard"},
		}
	default:
		// Wayland first, then the X11 fallbacks.
		return [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}
}

func copyToClipboard(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var lastErr error
	for _, candidate := range clipboardCandidates() {
		name, args := candidate[0], candidate[1:]
		if _, err := exec.LookPath(name); err != nil {
			lastErr = err
			continue
		}
		cmd := exec.Command(name, args...)
		cmd.Stdin = strings.NewReader(s)
		if err := cmd.Run(); err != nil {
			debug.Log("tui: clipboard via %s failed: %v", name, err)
			lastErr = fmt.Errorf("%s: %w", name, err)
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no clipboard command available")
	}
	return lastErr
}
