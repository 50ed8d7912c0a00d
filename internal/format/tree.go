package format

import (
	"fmt"
	"io"
	"strings"

	"coursetree-cli/internal/model"
)

// WriteTree renders the outline as indented plain text, one row per item.
// Closed subtrees are still printed in full; collapse is a TUI concern.
func WriteTree(w io.Writer, data []model.TreeItem) error {
	var b strings.Builder
	for i := range data {
		writeTreeNode(&b, &data[i], 0)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTreeNode(b *strings.Builder, it *model.TreeItem, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(it.Label)
	if it.Type != "" {
		fmt.Fprintf(b, "  [%s]", it.Type)
	}
	if it.IsDraft {
		b.WriteString("  (draft)")
	}
	fmt.Fprintf(b, "  <%s>\n", it.ID)
	for i := range it.Children {
		writeTreeNode(b, &it.Children[i], depth+1)
	}
}
