package tui

import (
	"coursetree-cli/internal/model"
)

// row is one visible line of the outline. Children of closed items do not
// produce rows; the tree's children order is the row order.
type row struct {
	item        model.TreeItem
	depth       int
	hasChildren bool
}

func visibleRows(data []model.TreeItem) []row {
	var out []row
	var walk func(items []model.TreeItem, depth int)
	walk = func(items []model.TreeItem, depth int) {
		for _, it := range items {
			out = append(out, row{item: it, depth: depth, hasChildren: len(it.Children) > 0})
			if it.IsOpen {
				walk(it.Children, depth+1)
			}
		}
	}
	walk(data, 0)
	return out
}

func rowIndexOf(rows []row, id string) int {
	for i, r := range rows {
		if r.item.ID == id {
			return i
		}
	}
	return -1
}
